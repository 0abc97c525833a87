package provider

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/funnel/internal/fetch"
	"github.com/law-makers/funnel/internal/scrape"
	urlutil "github.com/law-makers/funnel/internal/utils/url"
	"github.com/law-makers/funnel/pkg/models"
)

const (
	monsterPageSize = 25

	// monsterSearchTag is the intcid value monster expects on searches that
	// originate from its own search box.
	monsterSearchTag = "skr_navigation_nhpso_searchMain"
)

// monsterIDRe pulls the listing ID out of a detail URL: either a UUID or a
// plain numeric ID, whichever path segment the board used.
var monsterIDRe = regexp.MustCompile(
	`/((?:[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12})|\d+)`,
)

// Monster scrapes www.monster.ca / www.monster.com search results.
type Monster struct {
	domain  string
	radii   radiusBuckets
	session string
	extra   map[string]string
}

// NewMonster builds the monster source for a locale.
func NewMonster(locale models.Locale, opts Options) (*Monster, error) {
	domain, radii, err := localeParams(locale)
	if err != nil {
		return nil, fmt.Errorf("monster: %w", err)
	}
	return &Monster{domain: domain, radii: radii, session: opts.Session, extra: opts.Headers}, nil
}

func (m *Monster) Name() string { return "monster" }

func (m *Monster) PageSize() int { return monsterPageSize }

func (m *Monster) FragmentSelector() string { return "div.flex-row" }

func (m *Monster) Session() string { return m.session }

func (m *Monster) Spec() scrape.ExtractionSpec {
	return scrape.ExtractionSpec{
		Required: []scrape.FieldID{
			scrape.FieldTitle, scrape.FieldCompany, scrape.FieldLocation,
			scrape.FieldKeyID, scrape.FieldURL,
		},
		FromListing: []scrape.FieldID{
			scrape.FieldTitle, scrape.FieldCompany, scrape.FieldLocation,
			scrape.FieldPostDate, scrape.FieldURL,
		},
		FromDetail: []scrape.FieldID{
			scrape.FieldKeyID, scrape.FieldDescription,
		},
	}
}

func (m *Monster) Headers() map[string]string {
	return mergeHeaders(map[string]string{
		"Accept": "text/html,application/xhtml+xml,application/xml;" +
			"q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-GB,en-US;q=0.8,en;q=0.6",
		"Referer":                   fmt.Sprintf("https://www.monster.%s/", m.domain),
		"Upgrade-Insecure-Requests": "1",
		"Cache-Control":             "no-cache",
		"Connection":                "keep-alive",
	}, m.extra)
}

// SearchRequest builds the GET search URL. City spaces become dashes and the
// radius snaps to the nearest bucket the board accepts.
func (m *Monster) SearchRequest(desc models.SearchDescriptor) (fetch.Request, error) {
	if len(desc.Keywords) == 0 {
		return fetch.Request{}, fmt.Errorf("monster: no search keywords")
	}
	if desc.City == "" || desc.Province == "" {
		return fetch.Request{}, fmt.Errorf("monster: city and province are required")
	}

	searchURL := fmt.Sprintf(
		"https://www.monster.%s/jobs/search/?q=%s&where=%s__2C-%s&intcid=%s&rad=%d",
		m.domain,
		url.QueryEscape(desc.Query()),
		url.QueryEscape(strings.ReplaceAll(desc.City, " ", "-")),
		url.QueryEscape(desc.Province),
		monsterSearchTag,
		m.radii.snap(desc.Radius),
	)
	if err := urlutil.ValidateURL(searchURL); err != nil {
		return fetch.Request{}, fmt.Errorf("monster search url: %w", err)
	}
	return fetch.Request{URL: searchURL}, nil
}

// ResultCount returns the "N jobs" figure text from the first results page.
func (m *Monster) ResultCount(doc *goquery.Document) (string, error) {
	sel := doc.Find("h2.figure").First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("result count element h2.figure not found")
	}
	return strings.TrimSpace(sel.Text()), nil
}

// PageAddresser addresses page N through the start offset parameter. The
// mapping depends only on the first page URL, so the returned function is
// pure.
func (m *Monster) PageAddresser(firstPageURL string, _ *goquery.Document) (func(page int) (string, error), error) {
	return func(page int) (string, error) {
		if page < 1 {
			return "", fmt.Errorf("page index %d out of range", page)
		}
		if page == 1 {
			return firstPageURL, nil
		}
		return fmt.Sprintf("%s&start=%d", firstPageURL, (page-1)*monsterPageSize), nil
	}, nil
}

func (m *Monster) Extractors() scrape.ExtractorTable {
	return scrape.ExtractorTable{
		Listing: map[scrape.FieldID]scrape.ListingFunc{
			scrape.FieldTitle: func(frag scrape.Fragment) (any, error) {
				return textOf(frag, "h2.title")
			},
			scrape.FieldCompany: func(frag scrape.Fragment) (any, error) {
				return textOf(frag, "div.company")
			},
			scrape.FieldLocation: func(frag scrape.Fragment) (any, error) {
				return textOf(frag, "div.location")
			},
			scrape.FieldPostDate: func(frag scrape.Fragment) (any, error) {
				raw, err := textOf(frag, "time")
				if err != nil {
					return nil, err
				}
				return scrape.PostDateFromRelative(raw, time.Now())
			},
			scrape.FieldURL: func(frag scrape.Fragment) (any, error) {
				href, err := hrefOf(frag, `a[data-bypass="true"]`)
				if err != nil {
					return nil, err
				}
				return urlutil.ResolveURL(frag.PageURL, href), nil
			},
		},
		Detail: map[scrape.FieldID]scrape.DetailFunc{
			// KeyID is carved out of the detail URL; no secondary fetch.
			scrape.FieldKeyID: func(_ context.Context, rec *models.JobRecord, _ scrape.FetchDoc) (any, error) {
				m := monsterIDRe.FindStringSubmatch(rec.URL)
				if m == nil {
					return nil, fmt.Errorf("no listing ID in url %q", rec.URL)
				}
				return m[1], nil
			},
			scrape.FieldDescription: func(ctx context.Context, rec *models.JobRecord, fetchDoc scrape.FetchDoc) (any, error) {
				doc, _, err := fetchDoc(ctx, rec.URL)
				if err != nil {
					return nil, err
				}
				sel := doc.Find("#JobDescription").First()
				if sel.Length() == 0 {
					return nil, fmt.Errorf("description container not found")
				}
				html, _ := sel.Html()
				return scrape.DescriptionValue{
					Text: strings.TrimSpace(sel.Text()),
					HTML: html,
				}, nil
			},
		},
	}
}
