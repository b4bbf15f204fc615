// Package naming provides the case-insensitive prefix matching shared by
// faction path resolution and permission token validation.
package naming

import "strings"

// MatchPrefix resolves input against candidates using case-insensitive,
// unambiguous-prefix matching. An exact match always wins, even when it is
// also a prefix of another candidate. Zero or multiple prefix candidates both
// report no match; callers disambiguate with a longer prefix.
func MatchPrefix(input string, candidates []string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return "", false
	}

	var matched string
	count := 0
	for _, candidate := range candidates {
		lowered := strings.ToLower(candidate)
		if lowered == needle {
			return candidate, true
		}
		if strings.HasPrefix(lowered, needle) {
			matched = candidate
			count++
		}
	}
	if count != 1 {
		return "", false
	}
	return matched, true
}
