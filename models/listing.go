package models

import "strings"

// StockStatus is the canonical availability category derived from the
// free-text wording a retailer uses on its listing page.
type StockStatus string

const (
	StatusInStock     StockStatus = "In Stock"
	StatusPreorder    StockStatus = "Preorder"
	StatusNotifyMe    StockStatus = "Notify Me"
	StatusOutOfStock  StockStatus = "Out of Stock"
	StatusNotTracking StockStatus = "Not Tracking"
	StatusEbay        StockStatus = "Ebay"
	StatusUnknown     StockStatus = "Unknown"
)

// AllStockStatuses lists every canonical status in display order.
var AllStockStatuses = []StockStatus{
	StatusInStock,
	StatusPreorder,
	StatusNotifyMe,
	StatusOutOfStock,
	StatusNotTracking,
	StatusEbay,
	StatusUnknown,
}

// IsAvailable reports whether the status counts as an available listing.
// Ebay listings are a separate marketplace but still purchasable, so they
// survive availability filtering.
func (s StockStatus) IsAvailable() bool {
	switch s {
	case StatusInStock, StatusPreorder, StatusNotifyMe, StatusEbay:
		return true
	}
	return false
}

// Class returns a stable lowercase hyphenated token for the status,
// usable as a CSS class or filter key independent of display wording.
func (s StockStatus) Class() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

// Listing is one row extracted from a retailer availability page.
type Listing struct {
	Name          string      `json:"name" yaml:"name" toml:"name"`
	Status        StockStatus `json:"status" yaml:"status" toml:"status"`
	StatusLabel   string      `json:"status_label" yaml:"status_label" toml:"status_label"`
	PriceText     string      `json:"price_text" yaml:"price_text" toml:"price_text"`
	PriceValue    *float64    `json:"price_value,omitempty" yaml:"price_value,omitempty" toml:"price_value,omitempty"`
	LastAvailable string      `json:"last_available" yaml:"last_available" toml:"last_available"`
	Link          string      `json:"link" yaml:"link" toml:"link"`
}

// StatusClass exposes the status token directly on the listing so view
// layers never re-derive it from the display label.
func (l Listing) StatusClass() string {
	return l.Status.Class()
}

// HasPrice reports whether a numeric price could be extracted for the row.
func (l Listing) HasPrice() bool {
	return l.PriceValue != nil
}

// CheapestResult is the per-model outcome of the cheapest-each aggregate:
// the single lowest-priced available listing, or the reason there is none.
type CheapestResult struct {
	Model   GpuModel `json:"model" yaml:"model" toml:"model"`
	Listing *Listing `json:"listing,omitempty" yaml:"listing,omitempty" toml:"listing,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}
