// Package headers turns repeatable "Key: Value" CLI flag values into
// request header maps.
package headers

import "strings"

// ParseHeaders parses raw flag values into a header map. Entries without a
// colon are ignored; whitespace around key and value is trimmed.
func ParseHeaders(raw []string) map[string]string {
	parsed := make(map[string]string, len(raw))
	for _, entry := range raw {
		key, value, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		parsed[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return parsed
}
