package scrape

import (
	"errors"
	"testing"
)

func TestSplit_Fragments(t *testing.T) {
	src := &fakeSource{countSel: "h2.count"}
	ps := NewPageScraper(src, &fakeFetcher{})

	doc := docFromHTML(t, resultsPage(3, 0, 3))
	frags, err := ps.Split(doc, "http://test/search", 1, true)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(frags))
	}
	for i, frag := range frags {
		if frag.PageURL != "http://test/search" {
			t.Errorf("fragment %d page URL = %q", i, frag.PageURL)
		}
		if frag.PageIndex != 1 {
			t.Errorf("fragment %d page index = %d", i, frag.PageIndex)
		}
	}
}

func TestSplit_EmptyExpectedNonEmpty(t *testing.T) {
	src := &fakeSource{countSel: "h2.count"}
	ps := NewPageScraper(src, &fakeFetcher{})

	doc := docFromHTML(t, `<html><body><h2 class="count">40 jobs</h2></body></html>`)
	_, err := ps.Split(doc, "http://test/search?p=2", 2, true)

	var pageErr *PageError
	if !errors.As(err, &pageErr) {
		t.Fatalf("expected PageError, got %v", err)
	}
	if !errors.Is(err, ErrNoFragments) {
		t.Fatalf("expected ErrNoFragments, got %v", err)
	}
	if pageErr.Page != 2 {
		t.Errorf("page index = %d, want 2", pageErr.Page)
	}
}

func TestSplit_EmptyAllowed(t *testing.T) {
	src := &fakeSource{countSel: "h2.count"}
	ps := NewPageScraper(src, &fakeFetcher{})

	doc := docFromHTML(t, `<html><body><h2 class="count">0 jobs</h2></body></html>`)
	frags, err := ps.Split(doc, "http://test/search", 1, false)
	if err != nil {
		t.Fatalf("empty page with nothing expected should not error: %v", err)
	}
	if len(frags) != 0 {
		t.Fatalf("expected no fragments, got %d", len(frags))
	}
}
