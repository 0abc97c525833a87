package scrape

import (
	"github.com/PuerkitoBio/goquery"
)

// Fragment is the markup subtree of exactly one job listing within a results
// page, plus enough context to resolve relative URLs. Fragments are consumed
// once by the extraction phase and never mutated.
type Fragment struct {
	Sel *goquery.Selection
	// PageURL is the results page the fragment came from.
	PageURL string
	// PageIndex is the 1-based results page number, for diagnostics.
	PageIndex int
}
