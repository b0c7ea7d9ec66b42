package services

import (
	"regexp"
	"strconv"
	"strings"
)

// priceNumberPattern matches the first decimal number in a price cell:
// digits with optional thousands separators and an optional fraction.
var priceNumberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// PriceParser extracts a comparable numeric value from free-text price
// cells. The compiled pattern is immutable, so a single parser is safe
// for concurrent use.
type PriceParser struct {
	pattern *regexp.Regexp
}

// NewPriceParser creates a parser with the production number pattern.
func NewPriceParser() *PriceParser {
	return &PriceParser{pattern: priceNumberPattern}
}

// Parse extracts the first number found in reading order, currency
// symbols and thousands separators stripped. Returns nil when the text
// carries no number ("N/A", "Call for price", empty); malformed input is
// never an error, only an absent value.
//
// First-number policy: when a cell shows two prices (strikethrough
// original next to a sale price) the first one in reading order wins.
func (p *PriceParser) Parse(rawText string) *float64 {
	match := p.pattern.FindString(rawText)
	if match == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}
