package fetch

import "fmt"

// TransportError is a network or HTTP-level fetch failure. It is always
// recoverable at page granularity; the scrape layer decides what to drop.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GetStatusCode implements retry.StatusCoder.
func (e *TransportError) GetStatusCode() int { return e.StatusCode }
