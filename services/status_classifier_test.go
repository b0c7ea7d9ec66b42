package services

import (
	"testing"

	"github.com/gpuwatch/gpuwatch/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassifyCanonicalRuleTable(t *testing.T) {
	classifier := NewDefaultStatusClassifier()

	cases := []struct {
		raw  string
		want models.StockStatus
	}{
		{"In Stock", models.StatusInStock},
		{"in stock", models.StatusInStock},
		{"  IN   STOCK  ", models.StatusInStock},
		{"Stock Available", models.StatusInStock},
		{"Preorder", models.StatusPreorder},
		{"Pre-Order Now", models.StatusPreorder},
		{"Notify Me", models.StatusNotifyMe},
		{"Coming Soon", models.StatusNotifyMe},
		{"Out of Stock", models.StatusOutOfStock},
		{"Sold Out", models.StatusOutOfStock},
		{"Not Tracking", models.StatusNotTracking},
		{"Ebay", models.StatusEbay},
		{"Check EBAY", models.StatusEbay},
		{"", models.StatusUnknown},
		{"Call for availability", models.StatusUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, classifier.Classify(tc.raw), "raw=%q", tc.raw)
	}
}

func TestClassifyEbayOverridesStockWording(t *testing.T) {
	classifier := NewDefaultStatusClassifier()

	// eBay is a distinct marketplace regardless of literal stock wording
	// next to it.
	assert.Equal(t, models.StatusEbay, classifier.Classify("Ebay - In Stock"))
	assert.Equal(t, models.StatusEbay, classifier.Classify("Out of Stock (see eBay)"))
}

func TestClassifyEbayProperty(t *testing.T) {
	classifier := NewDefaultStatusClassifier()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("any text containing ebay classifies as Ebay", prop.ForAll(
		func(prefix, suffix string) bool {
			return classifier.Classify(prefix+" eBay "+suffix) == models.StatusEbay
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestClassifierSubstituteRuleTable(t *testing.T) {
	classifier := NewStatusClassifier([]StatusRule{
		{Pattern: "Gone", Status: models.StatusOutOfStock},
	})

	assert.Equal(t, models.StatusOutOfStock, classifier.Classify("all gone"))
	assert.Equal(t, models.StatusUnknown, classifier.Classify("in stock"))
}

func TestStatusClassToken(t *testing.T) {
	assert.Equal(t, "in-stock", models.StatusInStock.Class())
	assert.Equal(t, "out-of-stock", models.StatusOutOfStock.Class())
	assert.Equal(t, "ebay", models.StatusEbay.Class())
}
