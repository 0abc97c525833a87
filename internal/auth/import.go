package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ImportCookies builds and stores a session from a cookie JSON export, the
// format produced by browser DevTools "copy all as JSON". This is the login
// path for headless environments where no browser can be driven.
func ImportCookies(provider, domain, cookieFile string) (*Session, error) {
	raw, err := os.ReadFile(cookieFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("cookie file %s contains no cookies", cookieFile)
	}

	session := &Session{
		Provider:  provider,
		Domain:    domain,
		Cookies:   cookies,
		CreatedAt: time.Now(),
		ExpiresAt: earliestExpiry(cookies),
	}
	if err := Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// earliestExpiry returns the soonest cookie expiry, so the whole session is
// treated as stale once any required cookie dies. Session cookies (expiry 0)
// are ignored.
func earliestExpiry(cookies []Cookie) time.Time {
	var earliest time.Time
	for _, c := range cookies {
		if c.Expires <= 0 {
			continue
		}
		t := time.Unix(int64(c.Expires), 0)
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}
