package scrape

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// digitRunRe finds the first run of digits in a count indicator, after
// thousands separators are stripped.
var digitRunRe = regexp.MustCompile(`\d+`)

// PagePlan is the computed addressing and count for all result pages of one
// search.
//
// Pages = ceil(Total / PageSize) and may be zero for an empty search; the
// coordinator processes page 1 unconditionally either way, since it is
// already fetched before planning runs. URLFor is a pure function of the
// page index: the same index always maps to the same URL.
type PagePlan struct {
	Total    int
	PageSize int
	Pages    int
	URLFor   func(page int) (string, error)
}

// Planner turns a first results page into a PagePlan for one source.
type Planner struct {
	src Source
}

// NewPlanner creates a Planner for the source.
func NewPlanner(src Source) *Planner {
	return &Planner{src: src}
}

// Plan parses the total result count from the first page and computes how
// many pages the search spans. Fails with ErrResultCountUnparsable when the
// count indicator carries no digits; that failure is fatal to the scrape.
func (p *Planner) Plan(firstPageURL string, doc *goquery.Document) (*PagePlan, error) {
	indicator, err := p.src.ResultCount(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResultCountUnparsable, err)
	}

	total, err := ParseResultCount(indicator)
	if err != nil {
		return nil, err
	}

	pageSize := p.src.PageSize()
	pages := int(math.Ceil(float64(total) / float64(pageSize)))

	urlFor, err := p.src.PageAddresser(firstPageURL, doc)
	if err != nil {
		// Without addressing, pagination cannot be established.
		return nil, fmt.Errorf("page addressing: %w", err)
	}

	log.Info().
		Str("source", p.src.Name()).
		Int("total", total).
		Int("page_size", pageSize).
		Int("pages", pages).
		Msg("Pagination planned")

	return &PagePlan{
		Total:    total,
		PageSize: pageSize,
		Pages:    pages,
		URLFor:   urlFor,
	}, nil
}

// ParseResultCount extracts the total listing count from an indicator
// string such as "1,234 jobs" or "87".
func ParseResultCount(s string) (int, error) {
	cleaned := strings.ReplaceAll(s, ",", "")
	run := digitRunRe.FindString(cleaned)
	if run == "" {
		return 0, fmt.Errorf("%w: %q", ErrResultCountUnparsable, s)
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrResultCountUnparsable, s)
	}
	return n, nil
}
