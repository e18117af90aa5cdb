package models

import "strings"

// ShortRef trims a source reference down to a compact display form:
// scheme and query string stripped, then truncated to 80 runes.
func ShortRef(ref string) string {
	s := ref
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	if r := []rune(s); len(r) > 80 {
		s = string(r[:80])
	}
	return s
}

// ShortID returns the first 8 characters of an id for log lines.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
