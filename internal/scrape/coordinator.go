package scrape

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/funnel/internal/fetch"
	"github.com/law-makers/funnel/pkg/models"
	"github.com/rs/zerolog/log"
)

// Coordinator orchestrates one source's scrape: pagination planning,
// concurrent page fetching, and per-fragment field extraction with the
// required-field policy. It is the entry point of the engine.
type Coordinator struct {
	src     Source
	fetcher fetch.Fetcher
	pages   *PageScraper
	planner *Planner
	workers int

	// OnProgress, when set, is called after each results page settles
	// (fetched or failed) with the number done and the planned total.
	OnProgress func(done, total int)
}

// NewCoordinator wires a Coordinator for one source. workers <= 0 selects
// the default pool size.
func NewCoordinator(src Source, fetcher fetch.Fetcher, workers int) *Coordinator {
	if workers <= 0 {
		workers = DefaultConcurrency()
	}
	return &Coordinator{
		src:     src,
		fetcher: fetcher,
		pages:   NewPageScraper(src, fetcher),
		planner: NewPlanner(src),
		workers: workers,
	}
}

type pageResult struct {
	page  int
	frags []Fragment
	err   error
}

type recordResult struct {
	ord int
	rec *models.JobRecord
}

// ScrapeAll runs the full scrape for a search and returns the accepted
// records. Page fetch failures and per-record drops degrade the result but
// never abort it; only an unplannable first page escapes as an error.
func (c *Coordinator) ScrapeAll(ctx context.Context, desc models.SearchDescriptor) ([]*models.JobRecord, error) {
	start := time.Now()

	if err := c.src.Spec().Validate(); err != nil {
		return nil, fmt.Errorf("extraction spec for %s: %w", c.src.Name(), err)
	}

	searchReq, err := c.src.SearchRequest(desc)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	// Page 1 is fetched synchronously and unconditionally: planning needs
	// it, and an empty search still gets its one page looked at.
	doc, firstPage, err := c.pages.FetchDocument(ctx, searchReq)
	if err != nil {
		return nil, fmt.Errorf("fetch first results page: %w", err)
	}

	plan, err := c.planner.Plan(firstPage.URL, doc)
	if err != nil {
		return nil, err
	}

	fragments, pagesFailed := c.collectFragments(ctx, doc, firstPage.URL, plan)
	records, dropped := c.extractRecords(ctx, fragments)

	log.Info().
		Str("source", c.src.Name()).
		Int("total_reported", plan.Total).
		Int("pages_planned", plan.Pages).
		Int("pages_failed", pagesFailed).
		Int("fragments", len(fragments)).
		Int("accepted", len(records)).
		Int("dropped", dropped).
		Dur("elapsed", time.Since(start)).
		Msg("Scrape completed")

	return records, nil
}

// collectFragments gathers listing fragments from page 1 and all scheduled
// pages 2..N. Pages are fetched on a bounded pool; each worker returns its
// own sub-slice and the merge happens after the join, so no accumulator is
// shared between workers.
func (c *Coordinator) collectFragments(ctx context.Context, firstDoc *goquery.Document, firstURL string, plan *PagePlan) ([]Fragment, int) {
	expectNonEmpty := plan.Total > 0

	var pagesFailed int
	done := 0
	progress := func() {
		done++
		if c.OnProgress != nil {
			c.OnProgress(done, maxInt(plan.Pages, 1))
		}
	}

	fragments, err := c.pages.Split(firstDoc, firstURL, 1, expectNonEmpty)
	if err != nil {
		// A markup change on page 1 loses that page, not the scrape.
		logPageFailure(err)
		pagesFailed++
	}
	progress()

	if plan.Pages < 2 {
		return fragments, pagesFailed
	}

	results := make(chan pageResult, plan.Pages-1)
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for page := 2; page <= plan.Pages; page++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(page int) {
			defer wg.Done()
			defer func() { <-sem }()

			url, err := plan.URLFor(page)
			if err != nil {
				results <- pageResult{page: page, err: &PageError{Page: page, Err: err}}
				return
			}
			frags, err := c.pages.FetchPage(ctx, url, page, expectNonEmpty)
			results <- pageResult{page: page, frags: frags, err: err}
		}(page)
	}

	// Barrier: every scheduled page settles before extraction begins.
	wg.Wait()
	close(results)

	collected := make([]pageResult, 0, plan.Pages-1)
	for res := range results {
		progress()
		if res.err != nil {
			logPageFailure(res.err)
			pagesFailed++
			continue
		}
		collected = append(collected, res)
	}

	// Deterministic intra-run order for easier debugging; the result is a
	// set in spirit.
	sort.Slice(collected, func(i, j int) bool { return collected[i].page < collected[j].page })
	for _, res := range collected {
		fragments = append(fragments, res.frags...)
	}
	return fragments, pagesFailed
}

// extractRecords runs field extraction over every fragment on a bounded
// pool and applies the required-field policy.
func (c *Coordinator) extractRecords(ctx context.Context, fragments []Fragment) ([]*models.JobRecord, int) {
	if len(fragments) == 0 {
		return nil, 0
	}

	results := make(chan recordResult, len(fragments))
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i, frag := range fragments {
		wg.Add(1)
		sem <- struct{}{}

		go func(ord int, frag Fragment) {
			defer wg.Done()
			defer func() { <-sem }()

			results <- recordResult{ord: ord, rec: c.buildRecord(ctx, frag)}
		}(i, frag)
	}

	wg.Wait()
	close(results)

	accepted := make([]recordResult, 0, len(fragments))
	dropped := 0
	for res := range results {
		if res.rec == nil {
			dropped++
			continue
		}
		accepted = append(accepted, res)
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].ord < accepted[j].ord })
	records := make([]*models.JobRecord, len(accepted))
	for i, res := range accepted {
		records[i] = res.rec
	}
	return records, dropped
}

// buildRecord extracts every declared field from one fragment. It returns
// nil when a required field cannot be extracted; the drop is logged, never
// propagated.
func (c *Coordinator) buildRecord(ctx context.Context, frag Fragment) *models.JobRecord {
	spec := c.src.Spec()
	table := c.src.Extractors()

	rec := &models.JobRecord{
		Provider:  c.src.Name(),
		ScrapedAt: time.Now(),
	}

	for _, field := range spec.FromListing {
		value, err := table.ExtractListing(field, frag)
		if err != nil {
			if dropRecord := c.fieldFailed(spec, field, frag, err); dropRecord {
				return nil
			}
			continue
		}
		if err := Assign(rec, field, value); err != nil {
			if dropRecord := c.fieldFailed(spec, field, frag, err); dropRecord {
				return nil
			}
		}
	}

	for _, field := range spec.FromDetail {
		value, err := table.ExtractDetail(ctx, field, rec, c.fetchDoc)
		if err != nil {
			if dropRecord := c.fieldFailed(spec, field, frag, err); dropRecord {
				return nil
			}
			continue
		}
		if err := Assign(rec, field, value); err != nil {
			if dropRecord := c.fieldFailed(spec, field, frag, err); dropRecord {
				return nil
			}
		}
	}

	for _, field := range spec.Required {
		if !Has(rec, field) {
			log.Warn().
				Str("source", c.src.Name()).
				Stringer("field", field).
				Str("page", frag.PageURL).
				Msg("Record dropped: required field empty after extraction")
			return nil
		}
	}

	return rec
}

// fieldFailed logs an extraction failure and reports whether the record
// must be dropped.
func (c *Coordinator) fieldFailed(spec ExtractionSpec, field FieldID, frag Fragment, err error) bool {
	if spec.IsRequired(field) {
		log.Warn().
			Err(err).
			Str("source", c.src.Name()).
			Stringer("field", field).
			Str("page", frag.PageURL).
			Msg("Record dropped: required field failed")
		return true
	}
	log.Debug().
		Err(err).
		Str("source", c.src.Name()).
		Stringer("field", field).
		Msg("Optional field missing")
	return false
}

// fetchDoc is the secondary-fetch capability handed to detail extractors.
func (c *Coordinator) fetchDoc(ctx context.Context, url string) (*goquery.Document, *models.Page, error) {
	page, err := c.fetcher.Fetch(ctx, fetch.Request{
		URL:     url,
		Headers: c.src.Headers(),
		Session: c.src.Session(),
	})
	if err != nil {
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, page, nil
}

func logPageFailure(err error) {
	var pageErr *PageError
	if errors.As(err, &pageErr) && errors.Is(pageErr.Err, ErrNoFragments) {
		// Zero fragments where listings were expected usually means the
		// board changed its markup; louder than an ordinary fetch failure.
		log.Error().Err(err).Msg("Results page yielded no fragments")
		return
	}
	log.Warn().Err(err).Msg("Results page lost")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
