package services

import (
	"context"
	"testing"

	"github.com/gpuwatch/gpuwatch/models"
	"github.com/gpuwatch/gpuwatch/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleInStockPage = `<div id="data"><table class="table"><tbody>
<tr><td><a href="http://x/500">Budget 5070</a></td><td>In Stock</td><td>$500.00</td><td></td></tr>
</tbody></table></div>`

func TestAggregatePartialFailureIsolation(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{
			"http://retailer.test/rtx5070/": singleInStockPage,
		},
		errs: map[string]error{
			"http://retailer.test/rtx5080/": shared.NewNetworkError("TIMEOUT", "timed out", "FetchPage", nil),
		},
	}
	aggregator := NewCheapestAggregator(newTestPipeline(fetcher))

	results := aggregator.Aggregate(context.Background(), []models.GpuModel{models.ModelRTX5070, models.ModelRTX5080})
	require.Len(t, results, 2)

	// Results stay in input order even though fetches run concurrently.
	assert.Equal(t, models.ModelRTX5070, results[0].Model)
	require.NotNil(t, results[0].Listing)
	assert.InDelta(t, 500.0, *results[0].Listing.PriceValue, 0.0001)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, models.ModelRTX5080, results[1].Model)
	assert.Nil(t, results[1].Listing)
	assert.NotEmpty(t, results[1].Error)
}

func TestAggregatePicksLowestAvailablePrice(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"http://retailer.test/rtx5080/": sampleListingPage,
	}}
	aggregator := NewCheapestAggregator(newTestPipeline(fetcher))

	results := aggregator.Aggregate(context.Background(), []models.GpuModel{models.ModelRTX5080})
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Listing)
	// The Out of Stock row never competes; 999.99 beats 1199.00.
	assert.Equal(t, "RTX 5080", results[0].Listing.Name)
	assert.InDelta(t, 999.99, *results[0].Listing.PriceValue, 0.0001)
}

func TestAggregateNoAvailableListing(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"http://retailer.test/rtx5090/": `<div id="data"><table class="table"><tbody>
<tr><td><a href="http://x/1">Sold Out 5090</a></td><td>Out of Stock</td><td>N/A</td><td></td></tr>
</tbody></table></div>`,
	}}
	aggregator := NewCheapestAggregator(newTestPipeline(fetcher))

	results := aggregator.Aggregate(context.Background(), []models.GpuModel{models.ModelRTX5090})
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Listing)
	assert.Empty(t, results[0].Error)
}

func TestAggregateOneResultPerModelInOrder(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"http://retailer.test/rtx5090/":   singleInStockPage,
		"http://retailer.test/rtx5080/":   singleInStockPage,
		"http://retailer.test/rtx5070ti/": singleInStockPage,
		"http://retailer.test/rtx5070/":   singleInStockPage,
	}}
	aggregator := NewCheapestAggregator(newTestPipeline(fetcher))

	results := aggregator.Aggregate(context.Background(), models.AllGpuModels)
	require.Len(t, results, len(models.AllGpuModels))
	for i, model := range models.AllGpuModels {
		assert.Equal(t, model, results[i].Model)
	}
}
