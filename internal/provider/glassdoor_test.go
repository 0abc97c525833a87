package provider

import (
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/funnel/internal/scrape"
	"github.com/law-makers/funnel/pkg/models"
)

const glassdoorListing = `<html><body>
<li class="jl" data-id="3946382607" data-normalize-job-title="Software Engineer" data-job-loc="Austin, TX">
  <div class="d-flex align-items-end pl-std css-mi55ob">2 days ago</div>
  <div class="jobInfoItem jobEmpolyerName">Hooli</div>
  <div class="logoWrap"><a href="/partner/jobListing.htm?id=3946382607">logo</a></div>
</li>
</body></html>`

func TestGlassdoor_ListingExtraction(t *testing.T) {
	src, err := NewGlassdoor(models.LocaleUSAEnglish, Options{})
	if err != nil {
		t.Fatalf("NewGlassdoor: %v", err)
	}
	if err := src.Spec().Validate(); err != nil {
		t.Fatalf("invalid spec: %v", err)
	}

	frag := fragmentFrom(t, glassdoorListing, src.FragmentSelector(), "https://www.glassdoor.com/Job/jobs.htm")
	table := src.Extractors()

	title, err := table.ExtractListing(scrape.FieldTitle, frag)
	if err != nil || title != "Software Engineer" {
		t.Errorf("title = %v, err = %v", title, err)
	}
	company, err := table.ExtractListing(scrape.FieldCompany, frag)
	if err != nil || company != "Hooli" {
		t.Errorf("company = %v, err = %v", company, err)
	}
	loc, err := table.ExtractListing(scrape.FieldLocation, frag)
	if err != nil || loc != "Austin, TX" {
		t.Errorf("location = %v, err = %v", loc, err)
	}
	keyID, err := table.ExtractListing(scrape.FieldKeyID, frag)
	if err != nil || keyID != "3946382607" {
		t.Errorf("key id = %v, err = %v", keyID, err)
	}
	u, err := table.ExtractListing(scrape.FieldURL, frag)
	if err != nil {
		t.Fatalf("url extraction failed: %v", err)
	}
	if u != "https://www.glassdoor.com/partner/jobListing.htm?id=3946382607" {
		t.Errorf("url = %v", u)
	}
	if _, err := table.ExtractListing(scrape.FieldPostDate, frag); err != nil {
		t.Errorf("post date extraction failed: %v", err)
	}
}

func TestGlassdoor_SearchRequest(t *testing.T) {
	src, _ := NewGlassdoor(models.LocaleCANEnglish, Options{})

	req, err := src.SearchRequest(models.SearchDescriptor{
		Keywords: []string{"data engineer"},
		City:     "Vancouver",
		Province: "BC",
		Radius:   12,
	})
	if err != nil {
		t.Fatalf("SearchRequest failed: %v", err)
	}
	if req.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", req.Method)
	}
	if req.URL != "https://www.glassdoor.ca/Job/jobs.htm" {
		t.Errorf("url = %q", req.URL)
	}
	if got := req.Form.Get("sc.keyword"); got != "data engineer" {
		t.Errorf("keyword = %q", got)
	}
	// 12 snaps down to the 10 bucket for CAN
	if got := req.Form.Get("radius"); got != "10" {
		t.Errorf("radius = %q, want 10", got)
	}
}

func TestGlassdoor_PageAddresser(t *testing.T) {
	src, _ := NewGlassdoor(models.LocaleCANEnglish, Options{})

	first := "https://www.glassdoor.ca/Job/jobs.htm"
	html := `<html><body><ul><li class="next"><a href="/Job/vancouver-jobs-SRCH_IL.0,9_IC2278756_KO10,12_IP2.htm">next</a></li></ul></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	urlFor, err := src.PageAddresser(first, doc)
	if err != nil {
		t.Fatalf("PageAddresser failed: %v", err)
	}

	p1, _ := urlFor(1)
	if p1 != first {
		t.Errorf("page 1 = %q", p1)
	}
	p4, _ := urlFor(4)
	want := "https://www.glassdoor.ca/Job/vancouver-jobs-SRCH_IL.0,9_IC2278756_KO10,12_IP4.htm"
	if p4 != want {
		t.Errorf("page 4 = %q, want %q", p4, want)
	}
}

func TestGlassdoor_PageAddresserNoNextLink(t *testing.T) {
	src, _ := NewGlassdoor(models.LocaleCANEnglish, Options{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body></body></html>`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	urlFor, err := src.PageAddresser("https://www.glassdoor.ca/Job/jobs.htm", doc)
	if err != nil {
		t.Fatalf("single-page results should still address page 1: %v", err)
	}
	if p1, _ := urlFor(1); p1 != "https://www.glassdoor.ca/Job/jobs.htm" {
		t.Errorf("page 1 = %q", p1)
	}
	if _, err := urlFor(2); err == nil {
		t.Error("expected error addressing page 2 without a next link")
	}
}

func TestGlassdoor_ResultCount(t *testing.T) {
	src, _ := NewGlassdoor(models.LocaleUSAEnglish, Options{})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><p class="jobsCount">1,327 Jobs</p></body></html>`,
	))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	got, err := src.ResultCount(doc)
	if err != nil {
		t.Fatalf("ResultCount failed: %v", err)
	}
	if got != "1,327 Jobs" {
		t.Errorf("count text = %q", got)
	}

	empty, _ := goquery.NewDocumentFromReader(strings.NewReader(`<html><body></body></html>`))
	if _, err := src.ResultCount(empty); err == nil {
		t.Error("expected error when the counter is absent")
	}
}

func TestEmbeddedDescription(t *testing.T) {
	page := &models.Page{Embedded: map[string]string{
		"window.appState":     "{}",
		"jobDescriptionBlurb": "We need engineers",
	}}
	if got := embeddedDescription(page); got != "We need engineers" {
		t.Errorf("embedded description = %q", got)
	}
	if got := embeddedDescription(nil); got != "" {
		t.Errorf("nil page should yield empty, got %q", got)
	}
}
