package cache

import (
	"testing"
	"time"

	"github.com/law-makers/funnel/pkg/models"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(1 << 20)
	defer m.Close()

	page := &models.Page{URL: "http://test/1", StatusCode: 200, Body: "hello"}
	if err := m.Set("k1", page, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := m.Get("k1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Body != "hello" {
		t.Errorf("body = %q", got.Body)
	}

	if _, ok := m.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory(1 << 20)
	defer m.Close()

	page := &models.Page{URL: "http://test/1", Body: "x"}
	if err := m.Set("k1", page, 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := m.Get("k1"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemory_EvictsWhenFull(t *testing.T) {
	// Small budget so the second large page evicts the first.
	m := NewMemory(600)
	defer m.Close()

	big := func(url string) *models.Page {
		return &models.Page{URL: url, Body: string(make([]byte, 400))}
	}
	if err := m.Set("a", big("http://test/a"), time.Minute); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if err := m.Set("b", big("http://test/b"), time.Minute); err != nil {
		t.Fatalf("Set b: %v", err)
	}

	if _, ok := m.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := m.Get("b"); !ok {
		t.Error("newest entry should survive")
	}
}

func TestMemory_DeleteAndClear(t *testing.T) {
	m := NewMemory(1 << 20)
	defer m.Close()

	page := &models.Page{URL: "http://test/1", Body: "x"}
	_ = m.Set("k1", page, time.Minute)
	_ = m.Set("k2", page, time.Minute)

	if err := m.Delete("k1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := m.Get("k1"); ok {
		t.Error("deleted key should miss")
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := m.Get("k2"); ok {
		t.Error("cleared cache should miss")
	}
}

func TestMemory_HitsAreOwnedCopies(t *testing.T) {
	m := NewMemory(1 << 20)
	defer m.Close()

	page := &models.Page{
		URL:     "http://test/shell",
		Body:    "<html></html>",
		Headers: map[string]string{"Content-Type": "text/html"},
	}
	if err := m.Set("k1", page, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Mutating the caller's page after Set must not reach the cache.
	page.Headers["Content-Type"] = "mutated"

	first, ok := m.Get("k1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if first.Headers["Content-Type"] != "text/html" {
		t.Errorf("cached entry shares the caller's map: %q", first.Headers["Content-Type"])
	}

	// A worker writing salvaged globals into its hit must not leak into
	// other workers' hits.
	first.Embedded = map[string]string{"searchState": "x"}
	first.Headers["X-Worker"] = "one"

	second, ok := m.Get("k1")
	if !ok {
		t.Fatal("expected second cache hit")
	}
	if len(second.Embedded) != 0 {
		t.Errorf("second hit sees first hit's globals: %v", second.Embedded)
	}
	if _, leaked := second.Headers["X-Worker"]; leaked {
		t.Error("second hit shares the first hit's header map")
	}
}

func TestKey_Distinct(t *testing.T) {
	a := Key("GET", "http://test/search", "")
	b := Key("POST", "http://test/search", "")
	c := Key("POST", "http://test/search", "q=go")
	if a == b || b == c || a == c {
		t.Errorf("keys should differ: %q %q %q", a, b, c)
	}
	if a != Key("GET", "http://test/search", "") {
		t.Error("same inputs should produce the same key")
	}
}
