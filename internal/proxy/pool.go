// Package proxy rotates outbound requests across a pool of proxies, with a
// cool-down for proxies that recently failed.
package proxy

import (
	"sync"
	"time"
)

const failureCooldown = 5 * time.Minute

// Pool is a round-robin proxy rotation with failure tracking.
// Safe for concurrent use by fetch workers.
type Pool struct {
	mu      sync.Mutex
	proxies []string
	index   int
	failed  map[string]time.Time
}

// NewPool creates a Pool from the configured proxy URLs. An empty list is
// valid and yields direct connections.
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies: proxies,
		failed:  make(map[string]time.Time),
	}
}

// Next returns the next healthy proxy, or "" when the pool is empty.
// If every proxy is cooling down, the current one is returned anyway.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	start := p.index
	for {
		proxy := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		if failedAt, ok := p.failed[proxy]; ok {
			if time.Since(failedAt) < failureCooldown {
				if p.index == start {
					return proxy
				}
				continue
			}
			delete(p.failed, proxy)
		}
		return proxy
	}
}

// MarkFailed puts a proxy on cool-down so it is skipped for a while.
func (p *Pool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if proxy != "" {
		p.failed[proxy] = time.Now()
	}
}

// Size returns the number of configured proxies.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}
