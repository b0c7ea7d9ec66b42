package shared

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultUserAgent mimics a desktop browser; the retailer serves a reduced
// page to obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// NewScraperTransport creates an HTTP transport with connection pooling
// tuned for repeated polling of a small set of hosts.
func NewScraperTransport() *http.Transport {
	transport := &http.Transport{
		MaxIdleConns:        100,              // Maximum idle connections across all hosts
		MaxIdleConnsPerHost: 10,               // Maximum idle connections per host
		IdleConnTimeout:     90 * time.Second, // Duration to keep idle connections alive

		DisableKeepAlives: false,

		TLSHandshakeTimeout:   10 * time.Second, // Maximum time for TLS handshake
		ResponseHeaderTimeout: 10 * time.Second, // Maximum time to wait for response headers
		ExpectContinueTimeout: 1 * time.Second,  // Maximum time to wait for 100-continue response

		DisableCompression: false,
	}

	logrus.WithFields(logrus.Fields{
		"component": "ScraperTransport",
	}).Debug("Created pooled scraper transport")

	return transport
}

// BrowserLikeHeaders returns the request headers used to mimic browser
// behavior on every page fetch.
func BrowserLikeHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Connection":      "keep-alive",
	}
}
