// Package permission provides the permission set algebra used by rank,
// member, and faction configuration data.
package permission

import (
	"sort"
	"strings"

	apperrors "github.com/louisbranch/ironhold/internal/platform/errors"
	"github.com/louisbranch/ironhold/internal/faction/naming"
)

// Set is an unordered collection of lowercase permission tokens.
type Set map[string]struct{}

// NewSet builds a set from tokens, trimming and lowercasing each one.
// Empty tokens are dropped.
func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, token := range tokens {
		normalized := strings.ToLower(strings.TrimSpace(token))
		if normalized == "" {
			continue
		}
		s[normalized] = struct{}{}
	}
	return s
}

// Parse splits raw on whitespace and builds a set from the fields.
func Parse(raw string) Set {
	return NewSet(strings.Fields(raw)...)
}

// Contains reports whether the set holds the token, case-insensitively.
func (s Set) Contains(token string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// Union returns a new set holding every token from s and the others.
func (s Set) Union(others ...Set) Set {
	out := make(Set, len(s))
	for token := range s {
		out[token] = struct{}{}
	}
	for _, other := range others {
		for token := range other {
			out[token] = struct{}{}
		}
	}
	return out
}

// Intersect returns a new set holding only tokens present in both sets.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for token := range s {
		if _, ok := other[token]; ok {
			out[token] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets hold exactly the same tokens.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for token := range s {
		if _, ok := other[token]; !ok {
			return false
		}
	}
	return true
}

// Tokens returns the tokens in sorted order.
func (s Set) Tokens() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// String returns the sorted tokens joined with single spaces.
func (s Set) String() string {
	return strings.Join(s.Tokens(), " ")
}

// Validate resolves each whitespace-separated token in raw against the
// universe using unambiguous-prefix matching and returns the deduplicated
// canonical set. A token with zero or multiple matches fails, naming the
// offending token and the valid choices.
func Validate(universe Set, raw string) (Set, error) {
	entered := strings.Fields(strings.ToLower(raw))
	if len(entered) == 0 {
		return nil, apperrors.New(apperrors.CodePermissionsRequired, "you must provide permissions")
	}

	choices := universe.Tokens()
	out := make(Set, len(entered))
	for _, token := range entered {
		matched, ok := naming.MatchPrefix(token, choices)
		if !ok {
			return nil, apperrors.WithMetadata(
				apperrors.CodePermissionUnknown,
				"permission "+token+" not found, choices: "+universe.String(),
				map[string]string{"token": token, "choices": universe.String()},
			)
		}
		out[matched] = struct{}{}
	}
	return out, nil
}
