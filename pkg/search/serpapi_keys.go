package search

import (
	"math/rand"
	"strings"
)

// ParseSerpAPIKeys splits a comma-separated key list, trimming blanks and
// dropping duplicates while preserving first-seen order.
func ParseSerpAPIKeys(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

// HasSerpAPIKeys reports whether raw contains at least one key.
func HasSerpAPIKeys(raw string) bool {
	return len(ParseSerpAPIKeys(raw)) > 0
}

// ShuffledSerpAPIKeys returns the parsed keys in random order so repeated
// calls spread quota across the pool.
func ShuffledSerpAPIKeys(raw string) []string {
	keys := ParseSerpAPIKeys(raw)
	if len(keys) <= 1 {
		return keys
	}
	rand.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	return keys
}

// IsSerpAPIRateLimited reports whether a SerpAPI response indicates the key
// is out of quota and the next key should be tried.
func IsSerpAPIRateLimited(statusCode int, errorText string) bool {
	if statusCode == 429 {
		return true
	}
	text := strings.ToLower(errorText)
	switch {
	case strings.Contains(text, "rate limit"),
		strings.Contains(text, "too many requests"),
		strings.Contains(text, "searches per month"),
		strings.Contains(text, "insufficient searches"):
		return true
	case strings.Contains(text, "quota") && strings.Contains(text, "exceed"):
		return true
	}
	return false
}
