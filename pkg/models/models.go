package models

import (
	"fmt"
	"strings"
	"time"
)

// Locale identifies the language/country pairing a job search runs under.
// Providers use it to pick the right domain and radius units.
type Locale string

const (
	LocaleCANEnglish Locale = "CAN_ENG"
	LocaleUSAEnglish Locale = "USA_ENG"
)

// SearchDescriptor carries the user's query terms for one scrape run.
type SearchDescriptor struct {
	Keywords []string
	City     string
	Province string
	Locale   Locale
	Radius   int
}

// Query joins the search keywords into the dash-separated form most job
// boards expect in their query strings.
func (d SearchDescriptor) Query() string {
	return strings.ReplaceAll(strings.Join(d.Keywords, "-"), " ", "-")
}

// JobRecord is one validated job listing produced by a scrape run.
// Records are immutable once they leave the scrape coordinator.
type JobRecord struct {
	Provider        string    `json:"provider"`
	KeyID           string    `json:"key_id,omitempty"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	PostDate        time.Time `json:"post_date,omitempty"`
	URL             string    `json:"url"`
	Description     string    `json:"description,omitempty"`
	DescriptionHTML string    `json:"-"`
	Tags            []string  `json:"tags,omitempty"`
	Wage            string    `json:"wage,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// UniqueKey derives the deduplication key for this record: the
// provider-assigned ID when present, otherwise company+title+location.
func (r *JobRecord) UniqueKey() string {
	if r.KeyID != "" {
		return fmt.Sprintf("%s:%s", r.Provider, r.KeyID)
	}
	return strings.ToLower(fmt.Sprintf(
		"%s:%s|%s|%s", r.Provider, r.Company, r.Title, r.Location,
	))
}

// Page represents one raw fetched document, before any extraction.
type Page struct {
	URL        string            `json:"url"`
	StatusCode int               `json:"status_code"`
	Body       string            `json:"-"`
	Headers    map[string]string `json:"headers,omitempty"`
	// Embedded holds data globals salvaged from inline scripts when the
	// server HTML turned out to be a JS shell. Keys are global variable names.
	Embedded  map[string]string `json:"embedded,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
	Elapsed   time.Duration     `json:"elapsed"`
}

// Clone returns a deep copy of the page. Cached pages are handed to
// concurrent workers that may mutate Headers or Embedded, so each consumer
// must own its maps.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Headers != nil {
		cp.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			cp.Headers[k] = v
		}
	}
	if p.Embedded != nil {
		cp.Embedded = make(map[string]string, len(p.Embedded))
		for k, v := range p.Embedded {
			cp.Embedded[k] = v
		}
	}
	return &cp
}
