package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gpuwatch/gpuwatch/models"
	"github.com/gpuwatch/gpuwatch/services"
	"github.com/sirupsen/logrus"
)

// SnapshotRefreshJob periodically re-scrapes every tracked model and
// publishes an immutable snapshot for the web handlers. Refresh cycles
// are serialized: a tick that lands while a refresh is running is
// skipped. Readers always get the last good data per model; a failing
// model keeps its previous listings with the failure annotated.
type SnapshotRefreshJob struct {
	pipeline   *services.ListingPipeline
	aggregator *services.CheapestAggregator
	logger     *logrus.Logger
	timeout    time.Duration

	mu        sync.Mutex
	isRunning bool

	snapshotMu sync.RWMutex
	snapshot   *models.Snapshot
}

// NewSnapshotRefreshJob creates a refresh job over the given pipeline and
// aggregator. timeout bounds one whole refresh cycle.
func NewSnapshotRefreshJob(pipeline *services.ListingPipeline, aggregator *services.CheapestAggregator, timeout time.Duration) *SnapshotRefreshJob {
	return &SnapshotRefreshJob{
		pipeline:   pipeline,
		aggregator: aggregator,
		logger:     logrus.New(),
		timeout:    timeout,
	}
}

// Run executes one refresh cycle across all tracked models.
func (j *SnapshotRefreshJob) Run() {
	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		j.logger.Warn("Snapshot refresh already running, skipping")
		return
	}
	j.isRunning = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.isRunning = false
		j.mu.Unlock()
	}()

	startTime := time.Now()
	refreshID := uuid.NewString()
	j.logger.WithField("refresh_id", refreshID).Info("Starting snapshot refresh")

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	previous := j.Snapshot()
	next := &models.Snapshot{
		RefreshID: refreshID,
		FetchedAt: time.Now(),
	}

	failureCount := 0
	for _, model := range models.AllGpuModels {
		listings, err := j.pipeline.Run(ctx, model, models.QueryOptions{
			IncludeUnavailable: true,
			SortBy:             models.SortByPrice,
		})
		entry := models.ModelListings{Model: model, Listings: listings}
		if err != nil {
			failureCount++
			entry.Error = err.Error()
			// Serve the model's last good listings rather than dropping
			// them from the page.
			if previous != nil {
				entry.Listings = previous.ListingsFor(model)
			}
			j.logger.WithFields(logrus.Fields{
				"refresh_id": refreshID,
				"model":      model.Slug(),
			}).WithError(err).Error("Model refresh failed, keeping stale listings")
			next.LastError = entry.Error
		}
		next.Models = append(next.Models, entry)
	}

	next.Cheapest = j.aggregator.Aggregate(ctx, models.AllGpuModels)

	j.snapshotMu.Lock()
	j.snapshot = next
	j.snapshotMu.Unlock()

	j.logger.WithFields(logrus.Fields{
		"refresh_id":      refreshID,
		"models_total":    len(models.AllGpuModels),
		"models_failed":   failureCount,
		"processing_time": time.Since(startTime),
	}).Info("Snapshot refresh complete")
}

// StartPeriodicUpdates runs one refresh immediately, then on every tick.
func (j *SnapshotRefreshJob) StartPeriodicUpdates(interval time.Duration) {
	j.logger.WithField("interval", interval).Info("Starting periodic snapshot refresh")

	ticker := time.NewTicker(interval)
	go func() {
		j.Run()
		for range ticker.C {
			j.Run()
		}
	}()
}

// Snapshot returns the latest published snapshot, or nil before the
// first refresh completes.
func (j *SnapshotRefreshJob) Snapshot() *models.Snapshot {
	j.snapshotMu.RLock()
	defer j.snapshotMu.RUnlock()
	return j.snapshot
}

// IsRunning reports whether a refresh cycle is currently in flight.
func (j *SnapshotRefreshJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.isRunning
}
