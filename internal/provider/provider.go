// Package provider implements the job-board sources: where a search lives,
// how its result pages are addressed, and how fields come out of its markup.
// Each source satisfies scrape.Source and is stateless across a run.
package provider

import (
	"fmt"
	"strings"

	"github.com/law-makers/funnel/internal/scrape"
	"github.com/law-makers/funnel/pkg/models"
)

// Options tunes a source beyond its locale.
type Options struct {
	// Session names a stored login session to attach to every request, or "".
	Session string
	// Headers are extra request headers layered over the source defaults.
	Headers map[string]string
}

// mergeHeaders layers extra headers over a source's defaults.
func mergeHeaders(base, extra map[string]string) map[string]string {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// New builds a source by name. Names are the lowercase provider identifiers
// also used in records and logs.
func New(name string, locale models.Locale, opts Options) (scrape.Source, error) {
	switch strings.ToLower(name) {
	case "monster":
		return NewMonster(locale, opts)
	case "glassdoor":
		return NewGlassdoor(locale, opts)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// Names lists the providers New accepts.
func Names() []string {
	return []string{"monster", "glassdoor"}
}

// textOf returns the trimmed text of the first match inside a fragment, or an
// error when the selector matches nothing or only whitespace.
func textOf(frag scrape.Fragment, selector string) (string, error) {
	sel := frag.Sel.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("selector %q matched nothing", selector)
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return "", fmt.Errorf("selector %q matched empty text", selector)
	}
	return text, nil
}

// attrOf returns a fragment root element's attribute value.
func attrOf(frag scrape.Fragment, attr string) (string, error) {
	v, ok := frag.Sel.Attr(attr)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("attribute %q missing", attr)
	}
	return strings.TrimSpace(v), nil
}

// hrefOf returns the href of the first match inside a fragment.
func hrefOf(frag scrape.Fragment, selector string) (string, error) {
	sel := frag.Sel.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("selector %q matched nothing", selector)
	}
	href, ok := sel.Attr("href")
	if !ok || href == "" {
		return "", fmt.Errorf("selector %q has no href", selector)
	}
	return href, nil
}
