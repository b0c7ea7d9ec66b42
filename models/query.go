package models

import (
	"fmt"
	"strings"
	"time"
)

// SortColumn selects the listing field a query is ordered by.
type SortColumn string

const (
	SortByName          SortColumn = "name"
	SortByStatus        SortColumn = "status"
	SortByPrice         SortColumn = "price"
	SortByLastAvailable SortColumn = "last_available"
	SortByLink          SortColumn = "link"
)

// AllSortColumns lists the accepted sort columns in help-text order.
var AllSortColumns = []SortColumn{SortByName, SortByStatus, SortByPrice, SortByLastAvailable, SortByLink}

// ParseSortColumn resolves user input to a sort column, accepting the
// "last"/"lastavailable"/"last_available" aliases.
func ParseSortColumn(input string) (SortColumn, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "name":
		return SortByName, nil
	case "status":
		return SortByStatus, nil
	case "price":
		return SortByPrice, nil
	case "last", "lastavailable", "last_available":
		return SortByLastAvailable, nil
	case "link":
		return SortByLink, nil
	}
	return "", fmt.Errorf("invalid sort column %q (accepted: name, status, price, last, link)", input)
}

// QueryOptions controls filtering, ordering, and truncation of a single
// model's listing query. A nil Limit means unlimited; a zero Limit means
// an empty result.
type QueryOptions struct {
	IncludeUnavailable bool
	SortBy             SortColumn
	Descending         bool
	Limit              *int
}

// DefaultQueryOptions mirrors the CLI defaults: available listings only,
// cheapest first.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{SortBy: SortByPrice}
}

// ModelListings pairs a model with the listings its page currently shows.
type ModelListings struct {
	Model    GpuModel  `json:"model"`
	Listings []Listing `json:"listings"`
	Error    string    `json:"error,omitempty"`
}

// Snapshot is the immutable result of one refresh cycle, published by the
// refresh job and read concurrently by web handlers.
type Snapshot struct {
	RefreshID string           `json:"refresh_id"`
	Models    []ModelListings  `json:"models"`
	Cheapest  []CheapestResult `json:"cheapest"`
	FetchedAt time.Time        `json:"fetched_at"`
	LastError string           `json:"last_error,omitempty"`
}

// AllListings flattens the per-model listings in tracking order.
func (s *Snapshot) AllListings() []Listing {
	var all []Listing
	for _, m := range s.Models {
		all = append(all, m.Listings...)
	}
	return all
}

// ListingsFor returns the listings captured for one model, or nil when the
// snapshot has none for it.
func (s *Snapshot) ListingsFor(model GpuModel) []Listing {
	for _, m := range s.Models {
		if m.Model == model {
			return m.Listings
		}
	}
	return nil
}
