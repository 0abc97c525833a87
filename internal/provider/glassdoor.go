package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/funnel/internal/fetch"
	"github.com/law-makers/funnel/internal/scrape"
	urlutil "github.com/law-makers/funnel/internal/utils/url"
	"github.com/law-makers/funnel/pkg/models"
)

const glassdoorPageSize = 30

// glassdoorPageTokenRe matches the page-index token glassdoor embeds in its
// pagination hrefs ("..._IP2.htm").
var glassdoorPageTokenRe = regexp.MustCompile(`_IP\d+\.`)

// Glassdoor scrapes www.glassdoor.ca / www.glassdoor.com search results.
// Searches are submitted as a POST form; result pages are addressed by
// rewriting the _IP<n>. token in the next-page link.
type Glassdoor struct {
	domain  string
	radii   radiusBuckets
	session string
	extra   map[string]string
}

// NewGlassdoor builds the glassdoor source for a locale.
func NewGlassdoor(locale models.Locale, opts Options) (*Glassdoor, error) {
	domain, radii, err := localeParams(locale)
	if err != nil {
		return nil, fmt.Errorf("glassdoor: %w", err)
	}
	return &Glassdoor{domain: domain, radii: radii, session: opts.Session, extra: opts.Headers}, nil
}

func (g *Glassdoor) Name() string { return "glassdoor" }

func (g *Glassdoor) PageSize() int { return glassdoorPageSize }

func (g *Glassdoor) FragmentSelector() string { return "li.jl" }

func (g *Glassdoor) Session() string { return g.session }

func (g *Glassdoor) Spec() scrape.ExtractionSpec {
	return scrape.ExtractionSpec{
		Required: []scrape.FieldID{
			scrape.FieldTitle, scrape.FieldCompany, scrape.FieldLocation,
			scrape.FieldKeyID, scrape.FieldURL,
		},
		FromListing: []scrape.FieldID{
			scrape.FieldTitle, scrape.FieldCompany, scrape.FieldLocation,
			scrape.FieldPostDate, scrape.FieldURL, scrape.FieldKeyID,
		},
		FromDetail: []scrape.FieldID{
			scrape.FieldDescription,
		},
	}
}

func (g *Glassdoor) Headers() map[string]string {
	return mergeHeaders(map[string]string{
		"Accept": "text/html,application/xhtml+xml,application/xml;" +
			"q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-GB,en-US;q=0.8,en;q=0.6",
		"Referer":                   fmt.Sprintf("https://www.glassdoor.%s/", g.domain),
		"Upgrade-Insecure-Requests": "1",
		"Cache-Control":             "no-cache",
		"Connection":                "keep-alive",
	}, g.extra)
}

// SearchRequest builds the POST search form the board's own search box
// submits.
func (g *Glassdoor) SearchRequest(desc models.SearchDescriptor) (fetch.Request, error) {
	if len(desc.Keywords) == 0 {
		return fetch.Request{}, fmt.Errorf("glassdoor: no search keywords")
	}
	if desc.City == "" {
		return fetch.Request{}, fmt.Errorf("glassdoor: city is required")
	}

	searchURL := fmt.Sprintf("https://www.glassdoor.%s/Job/jobs.htm", g.domain)
	if err := urlutil.ValidateURL(searchURL); err != nil {
		return fetch.Request{}, fmt.Errorf("glassdoor search url: %w", err)
	}

	form := url.Values{}
	form.Set("clickSource", "searchBtn")
	form.Set("sc.keyword", strings.Join(desc.Keywords, " "))
	form.Set("locT", "C")
	form.Set("locKeyword", fmt.Sprintf("%s, %s", desc.City, desc.Province))
	form.Set("radius", strconv.Itoa(g.radii.snap(desc.Radius)))

	return fetch.Request{
		URL:    searchURL,
		Method: http.MethodPost,
		Form:   form,
	}, nil
}

// ResultCount returns the "N Jobs" counter text from the first results page.
func (g *Glassdoor) ResultCount(doc *goquery.Document) (string, error) {
	sel := doc.Find("p.jobsCount").First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("result count element p.jobsCount not found")
	}
	return strings.TrimSpace(sel.Text()), nil
}

// PageAddresser derives the page-N URL template from the next-page link on
// page 1 by swapping its _IP<n>. token. When the first page has no next link
// the addresser still serves page 1; higher indices fail, which only matters
// if the count promised pages the markup does not link.
func (g *Glassdoor) PageAddresser(firstPageURL string, doc *goquery.Document) (func(page int) (string, error), error) {
	href, hasNext := doc.Find("li.next a").First().Attr("href")
	var template string
	if hasNext {
		template = urlutil.ResolveURL(firstPageURL, href)
		if !glassdoorPageTokenRe.MatchString(template) {
			return nil, fmt.Errorf("next-page link %q carries no _IP token", template)
		}
	}

	return func(page int) (string, error) {
		if page < 1 {
			return "", fmt.Errorf("page index %d out of range", page)
		}
		if page == 1 {
			return firstPageURL, nil
		}
		if template == "" {
			return "", fmt.Errorf("no next-page link on first page")
		}
		return glassdoorPageTokenRe.ReplaceAllString(
			template, fmt.Sprintf("_IP%d.", page),
		), nil
	}, nil
}

func (g *Glassdoor) Extractors() scrape.ExtractorTable {
	return scrape.ExtractorTable{
		Listing: map[scrape.FieldID]scrape.ListingFunc{
			scrape.FieldTitle: func(frag scrape.Fragment) (any, error) {
				return attrOf(frag, "data-normalize-job-title")
			},
			scrape.FieldCompany: func(frag scrape.Fragment) (any, error) {
				// The class name typo is the board's, not ours.
				return textOf(frag, "div.jobInfoItem.jobEmpolyerName")
			},
			scrape.FieldLocation: func(frag scrape.Fragment) (any, error) {
				return attrOf(frag, "data-job-loc")
			},
			scrape.FieldKeyID: func(frag scrape.Fragment) (any, error) {
				return attrOf(frag, "data-id")
			},
			scrape.FieldPostDate: func(frag scrape.Fragment) (any, error) {
				raw, err := textOf(frag, "div.d-flex.align-items-end.pl-std.css-mi55ob")
				if err != nil {
					return nil, err
				}
				return scrape.PostDateFromRelative(raw, time.Now())
			},
			scrape.FieldURL: func(frag scrape.Fragment) (any, error) {
				href, err := hrefOf(frag, "div.logoWrap a")
				if err != nil {
					return nil, err
				}
				return urlutil.ResolveURL(frag.PageURL, href), nil
			},
		},
		Detail: map[scrape.FieldID]scrape.DetailFunc{
			scrape.FieldDescription: func(ctx context.Context, rec *models.JobRecord, fetchDoc scrape.FetchDoc) (any, error) {
				doc, page, err := fetchDoc(ctx, rec.URL)
				if err != nil {
					return nil, err
				}
				sel := doc.Find("#JobDescriptionContainer").First()
				if sel.Length() > 0 {
					html, _ := sel.Html()
					return scrape.DescriptionValue{
						Text: strings.TrimSpace(sel.Text()),
						HTML: html,
					}, nil
				}
				// Script-shell detail pages sometimes carry the description
				// in a salvaged data global instead of rendered markup.
				if text := embeddedDescription(page); text != "" {
					return text, nil
				}
				return nil, fmt.Errorf("description container not found")
			},
		},
	}
}

// embeddedDescription scans salvaged inline-script globals for a description
// payload.
func embeddedDescription(page *models.Page) string {
	if page == nil {
		return ""
	}
	for name, value := range page.Embedded {
		if strings.Contains(strings.ToLower(name), "description") && value != "" {
			return value
		}
	}
	return ""
}
