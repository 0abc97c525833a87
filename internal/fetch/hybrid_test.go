package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/law-makers/funnel/internal/cache"
)

func TestHybrid_PassesThroughRenderedPages(t *testing.T) {
	body := "<html><body><div class=\"job\">" + strings.Repeat("real content ", 30) + "</div></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	h := NewHybrid(newTestStatic(nil), nil)
	page, err := h.Fetch(context.Background(), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if page.Body != body {
		t.Errorf("body altered on a server-rendered page")
	}
	if len(page.Embedded) != 0 {
		t.Errorf("no salvage expected, got %v", page.Embedded)
	}
}

func TestHybrid_SalvagesInlineGlobals(t *testing.T) {
	shell := `<html><body><div id="app"></div>
<script>window.jobDescriptionBlurb = "We build pipes";</script>
<script src="/bundle.js"></script>
</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(shell))
	}))
	defer server.Close()

	h := NewHybrid(newTestStatic(nil), nil)
	page, err := h.Fetch(context.Background(), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := page.Embedded["jobDescriptionBlurb"]; got != "We build pipes" {
		t.Errorf("salvaged global = %q, embedded = %v", got, page.Embedded)
	}
}

func TestHybrid_ConcurrentWorkersOnCachedShell(t *testing.T) {
	shell := `<html><body><div id="app"></div>
<script>window.jobDescriptionBlurb = "We build pipes";</script>
</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(shell))
	}))
	defer server.Close()

	mem := cache.NewMemory(1 << 20)
	defer mem.Close()
	h := NewHybrid(newTestStatic(mem), nil)

	// Warm the cache so every worker below hits the same entry. Each hit
	// must be an isolated copy; salvage writes into a shared map otherwise.
	if _, err := h.Fetch(context.Background(), Request{URL: server.URL}); err != nil {
		t.Fatalf("warmup fetch failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := h.Fetch(context.Background(), Request{URL: server.URL})
			if err != nil {
				errs <- err.Error()
				return
			}
			if page.Embedded["jobDescriptionBlurb"] != "We build pipes" {
				errs <- "salvaged global missing"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestHybrid_BrokenScriptDoesNotAbortSalvage(t *testing.T) {
	shell := `<html><body>
<script>document.querySelector("#app").render();</script>
<script>window.searchState = "page-2";</script>
</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(shell))
	}))
	defer server.Close()

	h := NewHybrid(newTestStatic(nil), nil)
	page, err := h.Fetch(context.Background(), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := page.Embedded["searchState"]; got != "page-2" {
		t.Errorf("later script should still run, embedded = %v", page.Embedded)
	}
}
