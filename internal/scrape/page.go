package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/funnel/internal/fetch"
	"github.com/law-makers/funnel/pkg/models"
)

// PageScraper fetches one results page and splits it into listing fragments
// using the source's fragment selector.
type PageScraper struct {
	src     Source
	fetcher fetch.Fetcher
}

// NewPageScraper creates a PageScraper for the source.
func NewPageScraper(src Source, fetcher fetch.Fetcher) *PageScraper {
	return &PageScraper{src: src, fetcher: fetcher}
}

// FetchDocument retrieves a page and parses it, without splitting.
// The planner uses this for page 1.
func (ps *PageScraper) FetchDocument(ctx context.Context, req fetch.Request) (*goquery.Document, *models.Page, error) {
	req.Headers = mergeHeaders(ps.src.Headers(), req.Headers)
	if req.Session == "" {
		req.Session = ps.src.Session()
	}

	page, err := ps.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", req.URL, err)
	}
	return doc, page, nil
}

// Split extracts the listing fragments from a parsed results page.
// expectNonEmpty distinguishes a markup change (error) from a legitimately
// empty search: zero fragments on a scheduled page of a plan expecting
// listings is ErrNoFragments.
func (ps *PageScraper) Split(doc *goquery.Document, pageURL string, pageIndex int, expectNonEmpty bool) ([]Fragment, error) {
	sel := doc.Find(ps.src.FragmentSelector())
	if sel.Length() == 0 {
		if expectNonEmpty {
			return nil, &PageError{URL: pageURL, Page: pageIndex, Err: ErrNoFragments}
		}
		return nil, nil
	}

	frags := make([]Fragment, 0, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		frags = append(frags, Fragment{Sel: s, PageURL: pageURL, PageIndex: pageIndex})
	})
	return frags, nil
}

// FetchPage fetches and splits one scheduled results page.
func (ps *PageScraper) FetchPage(ctx context.Context, url string, pageIndex int, expectNonEmpty bool) ([]Fragment, error) {
	doc, page, err := ps.FetchDocument(ctx, fetch.Request{URL: url})
	if err != nil {
		return nil, &PageError{URL: url, Page: pageIndex, Err: err}
	}
	return ps.Split(doc, page.URL, pageIndex, expectNonEmpty)
}

func mergeHeaders(base, extra map[string]string) map[string]string {
	if len(base) == 0 {
		return extra
	}
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
