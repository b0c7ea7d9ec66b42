package services

import (
	"context"
	"sort"
	"strings"

	"github.com/gpuwatch/gpuwatch/models"
	"github.com/sirupsen/logrus"
)

// ListingPipeline orchestrates one model's listing query: fetch the
// model's page, extract rows, then filter, sort, and limit. Fetch and
// structure failures propagate as distinct inspectable errors; per-row
// extraction problems never surface here.
type ListingPipeline struct {
	fetcher   PageFetcher
	extractor *ListingExtractor
	baseURL   string
}

// NewListingPipeline creates a pipeline over the given fetch capability
// and extractor. baseURL is the retailer root all model pages live under.
func NewListingPipeline(fetcher PageFetcher, extractor *ListingExtractor, baseURL string) *ListingPipeline {
	return &ListingPipeline{fetcher: fetcher, extractor: extractor, baseURL: baseURL}
}

// PageURL returns the retailer page URL for a tracked model.
func (p *ListingPipeline) PageURL(model models.GpuModel) string {
	base := p.baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + model.PagePath()
}

// Run executes the full query for one model.
func (p *ListingPipeline) Run(ctx context.Context, model models.GpuModel, opts models.QueryOptions) ([]models.Listing, error) {
	pageURL := p.PageURL(model)

	markup, err := p.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	listings, err := p.extractor.Extract(markup)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"model":    model.Slug(),
		"listings": len(listings),
	}).Debug("Extracted listings for model")

	return ApplyQuery(listings, opts), nil
}

// ApplyQuery filters, sorts, and limits an extracted listing sequence.
// It never mutates its input, so cached snapshots can be re-queried
// concurrently.
func ApplyQuery(listings []models.Listing, opts models.QueryOptions) []models.Listing {
	result := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		if opts.IncludeUnavailable || listing.Status.IsAvailable() {
			result = append(result, listing)
		}
	}

	// Stable sort: rows that compare equal keep extraction order.
	sort.SliceStable(result, func(i, j int) bool {
		return listingLess(result[i], result[j], opts.SortBy, opts.Descending)
	})

	if opts.Limit != nil && *opts.Limit < len(result) {
		result = result[:*opts.Limit]
	}
	return result
}

// listingLess orders two listings under a sort column and direction.
// Price compares numerically, and listings without a numeric price sort
// after every priced listing regardless of direction: an unknown price is
// unorderable, not large or small. All string columns compare
// case-insensitively.
func listingLess(a, b models.Listing, sortBy models.SortColumn, descending bool) bool {
	if sortBy == models.SortByPrice {
		switch {
		case a.HasPrice() && b.HasPrice():
			if descending {
				return *a.PriceValue > *b.PriceValue
			}
			return *a.PriceValue < *b.PriceValue
		case a.HasPrice():
			return true
		default:
			return false
		}
	}

	var left, right string
	switch sortBy {
	case models.SortByStatus:
		left, right = a.StatusLabel, b.StatusLabel
	case models.SortByLastAvailable:
		left, right = a.LastAvailable, b.LastAvailable
	case models.SortByLink:
		left, right = a.Link, b.Link
	default:
		left, right = a.Name, b.Name
	}

	left, right = strings.ToLower(left), strings.ToLower(right)
	if descending {
		return left > right
	}
	return left < right
}
