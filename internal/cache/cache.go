// Package cache holds raw fetched pages so that re-runs and detail-page
// revisits within one session do not hit the job boards again.
package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/law-makers/funnel/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache is the response cache consumed by the fetch layer.
type Cache interface {
	// Get retrieves a cached page by key.
	Get(key string) (*models.Page, bool)

	// Set stores a page with the given TTL, evicting old entries as needed.
	Set(key string, page *models.Page, ttl time.Duration) error

	// Delete removes a cached page; missing keys are not an error.
	Delete(key string) error

	// Clear removes everything.
	Clear() error

	// Close stops background maintenance.
	Close()
}

type entry struct {
	page      *models.Page
	expiresAt time.Time
	key       string
}

// Memory is an in-memory Cache with LRU eviction and TTL expiry.
type Memory struct {
	mu      sync.Mutex
	store   map[string]*list.Element
	lru     *list.List
	maxSize int64
	size    int64
	hits    uint64
	misses  uint64
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemory creates an in-memory page cache bounded by maxSizeBytes.
func NewMemory(maxSizeBytes int64) *Memory {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 64 * 1024 * 1024
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Memory{
		store:   make(map[string]*list.Element),
		lru:     list.New(),
		maxSize: maxSizeBytes,
		ctx:     ctx,
		cancel:  cancel,
	}
	go m.sweepExpired()
	return m
}

// Get retrieves a cached page, refreshing its LRU position.
func (m *Memory) Get(key string) (*models.Page, bool) {
	m.mu.Lock()
	el, ok := m.store[key]
	if !ok {
		m.misses++
		m.mu.Unlock()
		return nil, false
	}

	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		m.misses++
		m.removeLocked(el)
		m.mu.Unlock()
		return nil, false
	}

	m.lru.MoveToFront(el)
	m.hits++
	m.mu.Unlock()

	log.Debug().Str("key", key).Msg("Page cache hit")
	// Each caller gets its own copy. Concurrent workers mutate page maps
	// (salvaged globals), and the cached instance must never be shared.
	return e.page.Clone(), true
}

// Set stores a page with the given TTL.
func (m *Memory) Set(key string, page *models.Page, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	// The caller keeps its pointer and may mutate it after Set returns.
	page = page.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	size := pageSize(page)

	if el, ok := m.store[key]; ok {
		old := el.Value.(*entry)
		m.size -= pageSize(old.page)
		el.Value = &entry{page: page, expiresAt: time.Now().Add(ttl), key: key}
		m.lru.MoveToFront(el)
		m.size += size
		return nil
	}

	for m.size+size > m.maxSize && m.lru.Len() > 0 {
		m.removeLocked(m.lru.Back())
	}

	el := m.lru.PushFront(&entry{page: page, expiresAt: time.Now().Add(ttl), key: key})
	m.store[key] = el
	m.size += size

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int64("size_bytes", size).
		Msg("Cached page")
	return nil
}

// Delete removes a cached page.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.store[key]; ok {
		m.removeLocked(el)
	}
	return nil
}

// Clear removes all cached pages.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]*list.Element)
	m.lru = list.New()
	m.size = 0
	m.hits = 0
	m.misses = 0
	return nil
}

// Close stops the expiry sweeper.
func (m *Memory) Close() {
	m.cancel()
}

// Stats returns hit/miss counters for the summary log.
func (m *Memory) Stats() (hits, misses uint64, entries int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses, m.lru.Len()
}

// removeLocked must be called with m.mu held.
func (m *Memory) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	m.lru.Remove(el)
	delete(m.store, e.key)
	m.size -= pageSize(e.page)
}

func (m *Memory) sweepExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			var next *list.Element
			for el := m.lru.Front(); el != nil; el = next {
				next = el.Next()
				if now.After(el.Value.(*entry).expiresAt) {
					m.removeLocked(el)
				}
			}
			m.mu.Unlock()
		case <-m.ctx.Done():
			return
		}
	}
}

func pageSize(p *models.Page) int64 {
	// Rough estimate: body dominates; add overhead for struct and maps.
	return int64(len(p.Body)) + 1024
}

// Key builds the cache key for a request. POST bodies are part of the key so
// different searches against the same endpoint do not collide.
func Key(method, url, form string) string {
	if form != "" {
		return fmt.Sprintf("%s %s?%s", method, url, form)
	}
	return fmt.Sprintf("%s %s", method, url)
}
