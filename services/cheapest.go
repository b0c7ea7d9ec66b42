package services

import (
	"context"
	"sync"

	"github.com/gpuwatch/gpuwatch/models"
	"github.com/sirupsen/logrus"
)

// CheapestAggregator answers the cheapest-each query: the single lowest
// priced available listing per tracked model.
type CheapestAggregator struct {
	pipeline *ListingPipeline
}

// NewCheapestAggregator creates an aggregator over the given pipeline.
func NewCheapestAggregator(pipeline *ListingPipeline) *CheapestAggregator {
	return &CheapestAggregator{pipeline: pipeline}
}

// Aggregate runs the pipeline for each model concurrently and returns
// exactly one result per input model, in input order. A failing model
// carries its error in its own result and never blocks or aborts the
// others.
func (a *CheapestAggregator) Aggregate(ctx context.Context, gpuModels []models.GpuModel) []models.CheapestResult {
	results := make([]models.CheapestResult, len(gpuModels))

	var wg sync.WaitGroup
	for i, model := range gpuModels {
		wg.Add(1)
		go func(index int, model models.GpuModel) {
			defer wg.Done()
			results[index] = a.aggregateModel(ctx, model)
		}(i, model)
	}
	wg.Wait()

	return results
}

// aggregateModel finds the cheapest available listing for one model.
// Sorting by ascending price places priced listings before unpriced ones,
// so the head of a non-empty result is always the best pick.
func (a *CheapestAggregator) aggregateModel(ctx context.Context, model models.GpuModel) models.CheapestResult {
	listings, err := a.pipeline.Run(ctx, model, models.QueryOptions{
		IncludeUnavailable: false,
		SortBy:             models.SortByPrice,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"model": model.Slug(),
			"error": err,
		}).Warn("Cheapest lookup failed for model")
		return models.CheapestResult{Model: model, Error: err.Error()}
	}

	if len(listings) == 0 {
		return models.CheapestResult{Model: model}
	}

	cheapest := listings[0]
	return models.CheapestResult{Model: model, Listing: &cheapest}
}
