// Package delay enforces politeness delays between requests to job boards.
// Each provider domain gets its own token bucket so one slow board never
// starves the others.
package delay

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter blocks request workers until a fetch for the given URL may proceed.
type Limiter interface {
	Wait(ctx context.Context, urlStr string) error
}

// DomainLimiter is a per-domain token-bucket Limiter.
type DomainLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond per domain.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	if burst <= 0 {
		burst = 4
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the request may proceed or the context is done.
func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	host := hostOf(urlStr)
	if host == "" {
		// Malformed URL; let the transport produce the real error.
		return nil
	}
	return dl.limiter(host).Wait(ctx)
}

// SetRate overrides the rate for one domain, e.g. a board known to ban
// aggressively.
func (dl *DomainLimiter) SetRate(domain string, requestsPerSecond float64, burst int) {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if lim, ok := dl.limiters[domain]; ok {
		lim.SetLimit(rate.Limit(requestsPerSecond))
		lim.SetBurst(burst)
		return
	}
	dl.limiters[domain] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (dl *DomainLimiter) limiter(host string) *rate.Limiter {
	dl.mu.RLock()
	lim, ok := dl.limiters[host]
	dl.mu.RUnlock()
	if ok {
		return lim
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if lim, ok := dl.limiters[host]; ok {
		return lim
	}
	lim = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[host] = lim
	return lim
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
