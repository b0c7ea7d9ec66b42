package services

import (
	"testing"

	"github.com/gpuwatch/gpuwatch/models"
	"github.com/gpuwatch/gpuwatch/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListingPage = `<html><body>
<div id="data">
<table class="table">
<thead><tr><th>Name</th><th>Status</th><th>Price</th><th>Last Available</th></tr></thead>
<tbody>
<tr>
  <td><a href="http://x/1">RTX 5080</a></td>
  <td><a href="http://x/1">In Stock</a></td>
  <td>$999.99</td>
  <td title="2024-05-01">an hour ago</td>
</tr>
<tr>
  <td><a href="http://x/2">RTX 5080 OC</a></td>
  <td>Out of Stock</td>
  <td>N/A</td>
  <td></td>
</tr>
<tr>
  <td><a href="http://x/3">RTX 5080 Ti</a></td>
  <td>Preorder</td>
  <td>$1,199.00</td>
  <td></td>
</tr>
</tbody>
</table>
</div>
</body></html>`

const ebayRowPage = `<div id="data"><table class="table"><tbody>
<tr><td><a href="http://ebay/x">Ebay (New Items)</a></td><td>Stock Available</td></tr>
</tbody></table></div>`

func newTestExtractor() *ListingExtractor {
	return NewListingExtractor(NewDefaultStatusClassifier(), NewPriceParser())
}

func TestExtractSampleListingPage(t *testing.T) {
	listings, err := newTestExtractor().Extract(sampleListingPage)
	require.NoError(t, err)
	require.Len(t, listings, 3)

	first := listings[0]
	assert.Equal(t, "RTX 5080", first.Name)
	assert.Equal(t, models.StatusInStock, first.Status)
	assert.Equal(t, "In Stock", first.StatusLabel)
	assert.Equal(t, "$999.99", first.PriceText)
	require.NotNil(t, first.PriceValue)
	assert.InDelta(t, 999.99, *first.PriceValue, 0.0001)
	// Title attribute carries the full timestamp; the cell text is only
	// a relative time.
	assert.Equal(t, "2024-05-01", first.LastAvailable)
	assert.Equal(t, "http://x/1", first.Link)

	second := listings[1]
	assert.Equal(t, models.StatusOutOfStock, second.Status)
	assert.Nil(t, second.PriceValue)
	assert.Equal(t, "N/A", second.PriceText)
	assert.Equal(t, "-", second.LastAvailable)

	third := listings[2]
	assert.Equal(t, models.StatusPreorder, third.Status)
	require.NotNil(t, third.PriceValue)
	assert.InDelta(t, 1199.00, *third.PriceValue, 0.0001)
}

func TestExtractEbayRow(t *testing.T) {
	listings, err := newTestExtractor().Extract(ebayRowPage)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	ebay := listings[0]
	assert.Equal(t, "Ebay (New Items)", ebay.Name)
	assert.Equal(t, models.StatusEbay, ebay.Status)
	assert.Equal(t, "Stock Available", ebay.StatusLabel)
	assert.Equal(t, "-", ebay.PriceText)
	assert.Nil(t, ebay.PriceValue)
	assert.Equal(t, "-", ebay.LastAvailable)
	assert.Equal(t, "http://ebay/x", ebay.Link)
}

func TestExtractMissingTableIsStructureError(t *testing.T) {
	_, err := newTestExtractor().Extract("<html><body><p>maintenance</p></body></html>")
	require.Error(t, err)
	assert.True(t, shared.IsStructureError(err))
	assert.False(t, shared.IsNetworkError(err))
}

func TestExtractEmptyTableBodyIsEmptyResult(t *testing.T) {
	// A present container with zero body rows is a legitimate empty
	// page, not structural drift.
	listings, err := newTestExtractor().Extract(`<div id="data"><table class="table"><tbody></tbody></table></div>`)
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestExtractSkipsNamelessRows(t *testing.T) {
	markup := `<div id="data"><table class="table"><tbody>
<tr><td></td><td>In Stock</td><td>$10.00</td><td></td></tr>
<tr><td><a href="http://x/ok">Named</a></td><td>In Stock</td><td>$20.00</td><td></td></tr>
<tr><td>short row</td><td>In Stock</td></tr>
</tbody></table></div>`

	listings, err := newTestExtractor().Extract(markup)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Named", listings[0].Name)
}

func TestExtractIsIdempotent(t *testing.T) {
	extractor := newTestExtractor()

	first, err := extractor.Extract(sampleListingPage)
	require.NoError(t, err)
	second, err := extractor.Extract(sampleListingPage)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
