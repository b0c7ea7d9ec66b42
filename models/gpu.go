package models

import (
	"fmt"
	"strings"
)

// GpuModel identifies one tracked GPU SKU. The set of tracked models is
// closed; adding one means adding the constant, its page path, and an
// entry in AllGpuModels.
type GpuModel string

const (
	ModelRTX5090   GpuModel = "rtx5090"
	ModelRTX5080   GpuModel = "rtx5080"
	ModelRTX5070Ti GpuModel = "rtx5070ti"
	ModelRTX5070   GpuModel = "rtx5070"
)

// AllGpuModels is the explicit iteration order for "all models" views and
// the cheapest-each aggregate. Output ordering guarantees depend on it.
var AllGpuModels = []GpuModel{
	ModelRTX5090,
	ModelRTX5080,
	ModelRTX5070Ti,
	ModelRTX5070,
}

// DefaultGpuModel is used when the CLI gets no positional model argument.
const DefaultGpuModel = ModelRTX5080

// ParseGpuModel resolves user input like "5080" or "rtx5080" to a tracked
// model.
func ParseGpuModel(input string) (GpuModel, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, model := range AllGpuModels {
		if normalized == string(model) || normalized == strings.TrimPrefix(string(model), "rtx") {
			return model, nil
		}
	}
	return "", fmt.Errorf("unknown GPU model %q (tracked: %s)", input, strings.Join(GpuModelNames(), ", "))
}

// GpuModelNames returns the short user-facing names, in tracking order.
func GpuModelNames() []string {
	names := make([]string, 0, len(AllGpuModels))
	for _, model := range AllGpuModels {
		names = append(names, strings.TrimPrefix(string(model), "rtx"))
	}
	return names
}

// Slug returns the URL- and route-safe identifier for the model.
func (m GpuModel) Slug() string {
	return string(m)
}

// PagePath returns the retailer page path segment for the model.
func (m GpuModel) PagePath() string {
	return string(m) + "/"
}

// DisplayName returns the human-readable model name for page titles.
func (m GpuModel) DisplayName() string {
	switch m {
	case ModelRTX5090:
		return "RTX 5090"
	case ModelRTX5080:
		return "RTX 5080"
	case ModelRTX5070Ti:
		return "RTX 5070 Ti"
	case ModelRTX5070:
		return "RTX 5070"
	}
	return string(m)
}
