package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gocolly/colly/v2"
	"github.com/gpuwatch/gpuwatch/config"
	"github.com/gpuwatch/gpuwatch/shared"
	"github.com/sirupsen/logrus"
)

// PageFetcher is the fetch capability the pipeline depends on: page body
// by URL, or a network error.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

// CollyPageFetcher fetches retailer pages with a colly collector over a
// pooled transport. Failures are classified as timeout, connection, or
// HTTP-status network errors; no retries happen here.
type CollyPageFetcher struct {
	scraperConfig *config.ScraperConfig
	transport     *http.Transport
}

// NewCollyPageFetcher creates a fetcher for the given scraper
// configuration.
func NewCollyPageFetcher(scraperConfig *config.ScraperConfig) *CollyPageFetcher {
	return &CollyPageFetcher{
		scraperConfig: scraperConfig,
		transport:     shared.NewScraperTransport(),
	}
}

// FetchPage downloads one page body. A fresh collector per call keeps
// fetches independent; the transport underneath is shared for connection
// reuse.
func (f *CollyPageFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", shared.NewNetworkError("TIMEOUT", fmt.Sprintf("fetch cancelled before request: %v", err), "FetchPage", err)
	}

	collector := colly.NewCollector()
	collector.WithTransport(f.transport)
	collector.SetRequestTimeout(f.scraperConfig.HTTPTimeout)

	headers := shared.BrowserLikeHeaders(f.scraperConfig.UserAgent)
	collector.OnRequest(func(r *colly.Request) {
		for key, value := range headers {
			r.Headers.Set(key, value)
		}
		logrus.WithField("url", r.URL.String()).Debug("Fetching page")
	})

	var body []byte
	statusCode := 0

	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
	})

	if err := collector.Visit(pageURL); err != nil {
		return "", f.classifyFetchError(pageURL, statusCode, err)
	}

	logrus.WithFields(logrus.Fields{
		"url":    pageURL,
		"status": statusCode,
		"bytes":  len(body),
	}).Debug("Page fetch complete")

	return string(body), nil
}

func (f *CollyPageFetcher) classifyFetchError(pageURL string, statusCode int, err error) *shared.ServiceError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return shared.NewNetworkError("TIMEOUT",
			fmt.Sprintf("timed out fetching %s after %v", pageURL, f.scraperConfig.HTTPTimeout), "FetchPage", err)
	case statusCode != 0:
		return shared.NewNetworkError("HTTP_STATUS",
			fmt.Sprintf("request for %s failed with status %d", pageURL, statusCode), "FetchPage", err)
	default:
		return shared.NewNetworkError("CONNECTION",
			fmt.Sprintf("failed to fetch %s: %v", pageURL, err), "FetchPage", err)
	}
}
