package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gpuwatch/gpuwatch/models"
	"github.com/gpuwatch/gpuwatch/services"
	"github.com/gpuwatch/gpuwatch/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stockedPage = `<div id="data"><table class="table"><tbody>
<tr><td><a href="http://x/1">Card</a></td><td>In Stock</td><td>$750.00</td><td></td></tr>
</tbody></table></div>`

// toggleFetcher serves a good page until failing is flipped on.
type toggleFetcher struct {
	mu      sync.Mutex
	failing bool
}

func (f *toggleFetcher) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *toggleFetcher) FetchPage(_ context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", shared.NewNetworkError("CONNECTION", "connection refused", "FetchPage", nil)
	}
	return stockedPage, nil
}

func newTestRefreshJob(fetcher services.PageFetcher) *SnapshotRefreshJob {
	extractor := services.NewListingExtractor(services.NewDefaultStatusClassifier(), services.NewPriceParser())
	pipeline := services.NewListingPipeline(fetcher, extractor, "http://retailer.test/")
	return NewSnapshotRefreshJob(pipeline, services.NewCheapestAggregator(pipeline), 30*time.Second)
}

func TestRunPublishesSnapshot(t *testing.T) {
	job := newTestRefreshJob(&toggleFetcher{})
	require.Nil(t, job.Snapshot())

	job.Run()

	snapshot := job.Snapshot()
	require.NotNil(t, snapshot)
	assert.NotEmpty(t, snapshot.RefreshID)
	assert.Empty(t, snapshot.LastError)
	assert.Len(t, snapshot.Models, len(models.AllGpuModels))
	assert.Len(t, snapshot.Cheapest, len(models.AllGpuModels))
	for _, entry := range snapshot.Models {
		assert.Len(t, entry.Listings, 1)
	}
}

func TestRunKeepsStaleListingsOnFailure(t *testing.T) {
	fetcher := &toggleFetcher{}
	job := newTestRefreshJob(fetcher)

	job.Run()
	good := job.Snapshot()
	require.NotNil(t, good)

	fetcher.SetFailing(true)
	job.Run()

	stale := job.Snapshot()
	require.NotNil(t, stale)
	assert.NotEqual(t, good.RefreshID, stale.RefreshID)
	assert.NotEmpty(t, stale.LastError)
	for _, entry := range stale.Models {
		// Stale listings survive; the failure is annotated per model.
		assert.Len(t, entry.Listings, 1)
		assert.NotEmpty(t, entry.Error)
	}
}

func TestRunFailureWithoutPriorSnapshot(t *testing.T) {
	fetcher := &toggleFetcher{}
	fetcher.SetFailing(true)
	job := newTestRefreshJob(fetcher)

	job.Run()

	snapshot := job.Snapshot()
	require.NotNil(t, snapshot)
	assert.NotEmpty(t, snapshot.LastError)
	for _, entry := range snapshot.Models {
		assert.Empty(t, entry.Listings)
		assert.NotEmpty(t, entry.Error)
	}
	for _, result := range snapshot.Cheapest {
		assert.Nil(t, result.Listing)
		assert.NotEmpty(t, result.Error)
	}
}
