package scrape

import (
	"errors"
	"fmt"
)

// Sentinel errors for the planning and paging phases.
var (
	// ErrResultCountUnparsable means the first results page carried no
	// digit run where the total listing count was expected. Fatal to the
	// whole scrape: pagination cannot be bounded without it.
	ErrResultCountUnparsable = errors.New("result count unparsable")

	// ErrNoFragments means a page that the plan expected to be non-empty
	// yielded zero listing fragments. Usually a markup change.
	ErrNoFragments = errors.New("no listing fragments found")

	// ErrDateUnparsable means a post-date string matched neither the
	// relative-date grammar nor any known absolute format.
	ErrDateUnparsable = errors.New("post date unparsable")
)

// UnsupportedFieldError is returned when a field is looked up in an
// extractor table or setter table that has no entry for it.
type UnsupportedFieldError struct {
	Field FieldID
}

func (e *UnsupportedFieldError) Error() string {
	return fmt.Sprintf("unsupported field %s", e.Field)
}

// ExtractionError wraps a failure to extract a single field from a listing.
// Whether it is fatal to the record depends on the source's required set.
type ExtractionError struct {
	Field FieldID
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PageError wraps a page-level fetch or split failure. The page's fragments
// are omitted from the aggregate; the scrape itself continues.
type PageError struct {
	URL  string
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }
