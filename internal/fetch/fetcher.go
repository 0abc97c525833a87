// Package fetch is the transport layer: it turns URLs into raw pages.
// The scrape engine consumes it only through the Fetcher interface; every
// implementation must be safe for concurrent use by pool workers.
package fetch

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/law-makers/funnel/pkg/models"
)

// Request describes one page fetch.
type Request struct {
	URL string
	// Method is GET or POST; empty means GET.
	Method string
	// Form is the body for POST requests.
	Form url.Values
	// Headers are merged over the fetcher's defaults.
	Headers map[string]string
	// Session names a stored provider login whose cookies should ride along.
	Session string
	// Timeout overrides the fetcher's default for this request only.
	Timeout time.Duration
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Fetcher retrieves a single raw page.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*models.Page, error)
	Name() string
}
