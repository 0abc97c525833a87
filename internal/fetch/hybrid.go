package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/law-makers/funnel/pkg/models"
	"github.com/rs/zerolog/log"
)

var errPostUnsupported = errors.New("POST not supported by driven fetcher")

// Hybrid fetches with the static transport first and deals with JS-shell
// responses in two stages: inline scripts are executed in a sandboxed VM to
// salvage embedded data globals, and if the page still has no usable body a
// browser-driven fetch is attempted (when one is configured).
type Hybrid struct {
	static *Static
	driven *Driven
}

// NewHybrid wraps a static fetcher with shell handling. driven may be nil,
// in which case shell pages are returned with whatever was salvaged.
func NewHybrid(static *Static, driven *Driven) *Hybrid {
	return &Hybrid{static: static, driven: driven}
}

// Name returns the name of this fetcher.
func (h *Hybrid) Name() string {
	return "HybridFetcher"
}

// Fetch retrieves a page, salvaging script-embedded data when needed.
func (h *Hybrid) Fetch(ctx context.Context, req Request) (*models.Page, error) {
	page, err := h.static.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return page, nil
	}

	if !looksLikeShell(doc) {
		return page, nil
	}

	log.Debug().Str("url", req.URL).Msg("Page looks script-rendered, salvaging inline data")
	salvageEmbedded(page, doc)

	if h.driven != nil && req.method() == http.MethodGet {
		rendered, err := h.driven.Fetch(ctx, req)
		if err != nil {
			log.Warn().Err(err).Str("url", req.URL).Msg("Driven fallback failed, keeping static page")
			return page, nil
		}
		rendered.Embedded = page.Embedded
		return rendered, nil
	}

	return page, nil
}

// looksLikeShell reports whether the body is mostly empty while inline
// scripts are present, the signature of a client-rendered page.
func looksLikeShell(doc *goquery.Document) bool {
	text := strings.TrimSpace(doc.Find("body").Text())
	scripts := doc.Find("script").Length()
	return len(text) < 200 && scripts > 0
}

// salvageEmbedded runs the page's inline scripts in a goja VM with a minimal
// browser shim and records any non-standard globals they leave behind.
// Boards that inline their listing state as `window.<something> = {...}`
// surface it here for detail extractors to pick over.
func salvageEmbedded(page *models.Page, doc *goquery.Document) {
	vm := goja.New()

	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("document", map[string]interface{}{
		"location": map[string]interface{}{"href": page.URL},
	})
	vm.Set("location", map[string]interface{}{"href": page.URL})
	vm.Set("console", map[string]interface{}{
		"log":   func(call goja.FunctionCall) goja.Value { return nil },
		"error": func(call goja.FunctionCall) goja.Value { return nil },
	})

	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		src := sel.Text()
		if src == "" {
			return
		}
		// Most inline scripts fail on missing DOM APIs; data-assignment
		// ones are the survivors we care about.
		_, _ = vm.RunString(src)
	})

	if page.Embedded == nil {
		page.Embedded = make(map[string]string)
	}
	for _, key := range vm.GlobalObject().Keys() {
		if isStandardGlobal(key) {
			continue
		}
		val := vm.Get(key)
		if val == nil {
			continue
		}
		if exported := val.Export(); exported != nil {
			page.Embedded[key] = fmt.Sprintf("%v", exported)
		}
	}

	if len(page.Embedded) > 0 {
		log.Debug().Int("globals", len(page.Embedded)).Msg("Salvaged embedded data globals")
	}
}

func isStandardGlobal(key string) bool {
	standards := map[string]bool{
		"window": true, "self": true, "document": true, "location": true, "console": true,
		"Object": true, "Array": true, "String": true, "Number": true, "Boolean": true,
		"Date": true, "Math": true, "JSON": true, "RegExp": true, "Error": true,
		"Function": true, "parseInt": true, "parseFloat": true, "isNaN": true,
		"isFinite": true, "encodeURI": true, "decodeURI": true, "encodeURIComponent": true,
		"decodeURIComponent": true, "undefined": true, "NaN": true, "Infinity": true,
	}
	return standards[key]
}
