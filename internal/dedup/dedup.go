// Package dedup removes duplicate listings across providers and pages.
package dedup

import (
	"sync"

	"github.com/law-makers/funnel/pkg/models"
	"github.com/rs/zerolog/log"
)

// Registry deduplicates records by their unique key. The first record seen
// under a key wins; later duplicates are counted and dropped.
type Registry struct {
	mu   sync.Mutex
	seen map[string]struct{}
	dups int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// Add reports whether the record is new to the registry.
func (r *Registry) Add(rec *models.JobRecord) bool {
	key := rec.UniqueKey()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[key]; ok {
		r.dups++
		log.Debug().
			Str("key", key).
			Str("provider", rec.Provider).
			Msg("Duplicate record dropped")
		return false
	}
	r.seen[key] = struct{}{}
	return true
}

// Filter returns the records not seen before, preserving order.
func (r *Registry) Filter(records []*models.JobRecord) []*models.JobRecord {
	kept := make([]*models.JobRecord, 0, len(records))
	for _, rec := range records {
		if r.Add(rec) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// Duplicates returns how many records were rejected so far.
func (r *Registry) Duplicates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dups
}

// Size returns how many unique records the registry has accepted.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
