package scrape

import "runtime"

// maxWorkers caps the fetch/extraction pools regardless of CPU count; job
// boards do not appreciate fifty parallel connections.
const maxWorkers = 16

// DefaultConcurrency sizes the worker pool for I/O-bound scraping from the
// available CPU parallelism.
func DefaultConcurrency() int {
	n := runtime.NumCPU() * 2
	if n < 2 {
		n = 2
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}
