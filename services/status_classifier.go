package services

import (
	"strings"

	"github.com/gpuwatch/gpuwatch/models"
)

// StatusRule maps a normalized substring pattern to a canonical stock
// status. Rules are evaluated in order; first match wins.
type StatusRule struct {
	Pattern string
	Status  models.StockStatus
}

// StatusClassifier maps free-text retailer status wording to the closed
// StockStatus set. The rule table is immutable after construction, so a
// single classifier is safe for concurrent use.
type StatusClassifier struct {
	rules []StatusRule
}

// DefaultStatusRules returns the production rule table. The eBay rule
// comes first: eBay rows are a distinct marketplace and win over any
// literal stock wording that appears next to them.
func DefaultStatusRules() []StatusRule {
	return []StatusRule{
		{Pattern: "ebay", Status: models.StatusEbay},
		{Pattern: "in stock", Status: models.StatusInStock},
		{Pattern: "stock available", Status: models.StatusInStock},
		{Pattern: "pre-order", Status: models.StatusPreorder},
		{Pattern: "preorder", Status: models.StatusPreorder},
		{Pattern: "notify me", Status: models.StatusNotifyMe},
		{Pattern: "coming soon", Status: models.StatusNotifyMe},
		{Pattern: "out of stock", Status: models.StatusOutOfStock},
		{Pattern: "sold out", Status: models.StatusOutOfStock},
		{Pattern: "not tracking", Status: models.StatusNotTracking},
	}
}

// NewStatusClassifier creates a classifier with the given ordered rule
// table. The table is copied so callers cannot mutate it afterwards.
func NewStatusClassifier(rules []StatusRule) *StatusClassifier {
	owned := make([]StatusRule, len(rules))
	for i, rule := range rules {
		owned[i] = StatusRule{Pattern: normalizeStatusText(rule.Pattern), Status: rule.Status}
	}
	return &StatusClassifier{rules: owned}
}

// NewDefaultStatusClassifier creates a classifier with the production
// rule table.
func NewDefaultStatusClassifier() *StatusClassifier {
	return NewStatusClassifier(DefaultStatusRules())
}

// Classify maps arbitrary retailer status wording to a canonical status.
// Matching is case-insensitive on whitespace-normalized text; unmatched
// wording falls back to Unknown rather than failing.
func (c *StatusClassifier) Classify(rawText string) models.StockStatus {
	normalized := normalizeStatusText(rawText)
	for _, rule := range c.rules {
		if strings.Contains(normalized, rule.Pattern) {
			return rule.Status
		}
	}
	return models.StatusUnknown
}

// normalizeStatusText lowercases and collapses runs of whitespace so rule
// matching is insensitive to the retailer's formatting.
func normalizeStatusText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
