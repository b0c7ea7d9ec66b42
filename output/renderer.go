// Package output renders pipeline and aggregate results for terminals and
// machine consumers. It is presentation only: everything it prints comes
// off the typed listing structs, never re-derived from page markup.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"github.com/gpuwatch/gpuwatch/models"
	"github.com/gpuwatch/gpuwatch/shared"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Format selects the output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// AllFormats lists the accepted output formats in help-text order.
var AllFormats = []Format{FormatTable, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat resolves user input to an output format.
func ParseFormat(input string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("invalid output format %q (accepted: table, json, yaml, toml)", input)
}

// listingDocument wraps listings for TOML, which requires a top-level
// table.
type listingDocument struct {
	Listings []models.Listing `json:"listings" yaml:"listings" toml:"listings"`
}

// cheapestDocument wraps cheapest-each results for TOML.
type cheapestDocument struct {
	Results []models.CheapestResult `json:"results" yaml:"results" toml:"results"`
}

// RenderListings renders a listing sequence in the requested format.
// sortBy and descending only affect the table header's sort indicator.
func RenderListings(listings []models.Listing, format Format, sortBy models.SortColumn, descending bool) (string, error) {
	switch format {
	case FormatTable:
		return renderListingTable(listings, sortBy, descending), nil
	case FormatJSON:
		return renderJSON(listings)
	case FormatYAML:
		return renderYAML(listings)
	case FormatTOML:
		return renderTOML(listingDocument{Listings: listings})
	}
	return "", shared.NewValidationError("INVALID_FORMAT", fmt.Sprintf("unsupported output format %q", format), "RenderListings")
}

// RenderCheapest renders cheapest-each results in the requested format.
func RenderCheapest(results []models.CheapestResult, format Format) (string, error) {
	switch format {
	case FormatTable:
		return renderCheapestTable(results), nil
	case FormatJSON:
		return renderJSON(results)
	case FormatYAML:
		return renderYAML(results)
	case FormatTOML:
		return renderTOML(cheapestDocument{Results: results})
	}
	return "", shared.NewValidationError("INVALID_FORMAT", fmt.Sprintf("unsupported output format %q", format), "RenderCheapest")
}

func renderJSON(value interface{}) (string, error) {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return string(encoded), nil
}

func renderYAML(value interface{}) (string, error) {
	encoded, err := yaml.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return string(encoded), nil
}

func renderTOML(value interface{}) (string, error) {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(value); err != nil {
		return "", fmt.Errorf("failed to serialize to TOML: %w", err)
	}
	return buffer.String(), nil
}

func renderListingTable(listings []models.Listing, sortBy models.SortColumn, descending bool) string {
	if len(listings) == 0 {
		return "No listings found to display (after filtering)."
	}

	var buffer bytes.Buffer
	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{
		headerLabel("Name", models.SortByName, sortBy, descending),
		headerLabel("Status", models.SortByStatus, sortBy, descending),
		headerLabel("Price", models.SortByPrice, sortBy, descending),
		headerLabel("Last Available", models.SortByLastAvailable, sortBy, descending),
		headerLabel("Link", models.SortByLink, sortBy, descending),
	})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, listing := range listings {
		table.Append([]string{
			listing.Name,
			colorizeStatus(listing),
			listing.PriceText,
			listing.LastAvailable,
			listing.Link,
		})
	}

	table.Render()
	return buffer.String()
}

func renderCheapestTable(results []models.CheapestResult) string {
	var buffer bytes.Buffer
	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Model", "Name", "Status", "Price", "Link"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, result := range results {
		switch {
		case result.Error != "":
			table.Append([]string{result.Model.DisplayName(), color.RedString("error: %s", result.Error), "", "", ""})
		case result.Listing == nil:
			table.Append([]string{result.Model.DisplayName(), "no available listing", "", "", ""})
		default:
			table.Append([]string{
				result.Model.DisplayName(),
				result.Listing.Name,
				colorizeStatus(*result.Listing),
				result.Listing.PriceText,
				result.Listing.Link,
			})
		}
	}

	table.Render()
	return buffer.String()
}

// headerLabel appends a direction arrow to the active sort column.
func headerLabel(name string, column, sortBy models.SortColumn, descending bool) string {
	if column != sortBy {
		return name
	}
	if descending {
		return name + " ▼"
	}
	return name + " ▲"
}

// colorizeStatus applies the terminal color palette for stock states.
func colorizeStatus(listing models.Listing) string {
	label := listing.StatusLabel
	if label == "" {
		label = string(listing.Status)
	}
	switch listing.Status {
	case models.StatusInStock:
		return color.New(color.FgGreen, color.Bold).Sprint(label)
	case models.StatusPreorder:
		return color.New(color.FgYellow, color.Bold).Sprint(label)
	case models.StatusOutOfStock, models.StatusNotTracking:
		return color.New(color.FgRed).Sprint(label)
	case models.StatusEbay:
		return color.New(color.FgGreen).Sprint(label)
	}
	return label
}
