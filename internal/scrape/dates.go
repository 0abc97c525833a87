package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relDateRe matches the "<n> <unit>(s) ago" family job boards emit.
// The optional "+" covers "30+ days ago".
var relDateRe = regexp.MustCompile(`^(\d+)\+?\s*(minute|hour|day|week|month|year)s?\s*ago$`)

// absoluteLayouts are the calendar formats boards fall back to once a
// posting is old enough to stop being "n days ago".
var absoluteLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"01/02/2006",
}

// PostDateFromRelative resolves a post-date string against a reference
// instant. Relative phrases ("today", "3 days ago") are offsets from ref;
// absolute calendar dates are a supported branch, not a failure. Strings
// matching neither grammar fail with ErrDateUnparsable.
func PostDateFromRelative(s string, ref time.Time) (time.Time, error) {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	cleaned = strings.TrimSuffix(cleaned, "+")

	switch cleaned {
	case "today", "just posted", "posted today":
		return dateOnly(ref), nil
	case "yesterday":
		return dateOnly(ref.AddDate(0, 0, -1)), nil
	}

	if m := relDateRe.FindStringSubmatch(cleaned); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrDateUnparsable, s)
		}
		switch m[2] {
		case "minute", "hour":
			// Sub-day offsets collapse to the reference date.
			return dateOnly(ref), nil
		case "day":
			return dateOnly(ref.AddDate(0, 0, -n)), nil
		case "week":
			return dateOnly(ref.AddDate(0, 0, -7*n)), nil
		case "month":
			return dateOnly(ref.AddDate(0, -n, 0)), nil
		case "year":
			return dateOnly(ref.AddDate(-n, 0, 0)), nil
		}
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrDateUnparsable, s)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
