package scrape

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/funnel/internal/fetch"
	"github.com/law-makers/funnel/pkg/models"
)

// FetchDoc is the secondary-fetch capability handed to detail extractors.
// It retrieves the record's own detail page as a parsed document.
type FetchDoc func(ctx context.Context, url string) (*goquery.Document, *models.Page, error)

// ListingFunc extracts one field from a results-page fragment. It must be a
// pure function of the fragment: no network I/O.
type ListingFunc func(frag Fragment) (any, error)

// DetailFunc extracts one field that needs the listing's own page. It may
// perform at most one secondary fetch via the provided capability and must
// be idempotent. It never retries; retry policy lives in the transport.
type DetailFunc func(ctx context.Context, rec *models.JobRecord, fetchDoc FetchDoc) (any, error)

// ExtractorTable is a source's field-extraction dispatch: one function per
// field per phase. Unknown fields fail with UnsupportedFieldError rather
// than falling through.
type ExtractorTable struct {
	Listing map[FieldID]ListingFunc
	Detail  map[FieldID]DetailFunc
}

// ExtractListing runs the listing-phase extractor for a field.
func (t ExtractorTable) ExtractListing(field FieldID, frag Fragment) (any, error) {
	fn, ok := t.Listing[field]
	if !ok {
		return nil, &UnsupportedFieldError{Field: field}
	}
	v, err := fn(frag)
	if err != nil {
		return nil, &ExtractionError{Field: field, Err: err}
	}
	return v, nil
}

// ExtractDetail runs the detail-phase extractor for a field.
func (t ExtractorTable) ExtractDetail(ctx context.Context, field FieldID, rec *models.JobRecord, fetchDoc FetchDoc) (any, error) {
	fn, ok := t.Detail[field]
	if !ok {
		return nil, &UnsupportedFieldError{Field: field}
	}
	v, err := fn(ctx, rec, fetchDoc)
	if err != nil {
		return nil, &ExtractionError{Field: field, Err: err}
	}
	return v, nil
}

// Source is one job board: where to search, how pages are addressed, and how
// fields come out of its markup. Implementations are stateless with respect
// to a single scrape and safe for concurrent use.
type Source interface {
	// Name identifies the source in logs and records.
	Name() string

	// Spec declares required/listing/detail field sets.
	Spec() ExtractionSpec

	// Extractors returns the field dispatch tables.
	Extractors() ExtractorTable

	// PageSize is the number of listings per results page.
	PageSize() int

	// FragmentSelector matches one listing within a results page.
	FragmentSelector() string

	// SearchRequest builds the initial search-page request.
	SearchRequest(desc models.SearchDescriptor) (fetch.Request, error)

	// ResultCount returns the raw result-count indicator text from the
	// first results page.
	ResultCount(doc *goquery.Document) (string, error)

	// PageAddresser returns a pure function mapping a 1-based page index
	// to that page's URL, derived from the first page. The same index must
	// always map to the same URL.
	PageAddresser(firstPageURL string, doc *goquery.Document) (func(page int) (string, error), error)

	// Headers are sent with every request to this source.
	Headers() map[string]string

	// Session names the stored login session to attach, or "".
	Session() string
}
