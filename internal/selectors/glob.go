package selectors

import (
	"fmt"
	"path"
	"strings"

	"github.com/lherron/farmlist/internal/domain"
)

// IsGlobPattern checks if a selector contains glob characters
func IsGlobPattern(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// MatchGlob reports whether name matches a shell-style pattern, ignoring
// case. Supports *, ? and [...] classes.
func MatchGlob(pattern, name string) bool {
	matched, err := path.Match(strings.ToLower(pattern), strings.ToLower(name))
	if err != nil {
		return false
	}
	return matched
}

// ExpandItems resolves item selectors and glob patterns against names.
// The result keeps the order of first appearance and holds no duplicates.
// A pattern that matches nothing is an unknown item.
func ExpandItems(names []string, selectors []string) ([]string, error) {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, sel := range selectors {
		parsed := Parse(sel)
		if !IsGlobPattern(parsed.Token) {
			name, err := ResolveItem(names, sel)
			if err != nil {
				return nil, err
			}
			add(name)
			continue
		}

		if err := expect(parsed, TypeItem); err != nil {
			return nil, err
		}
		if _, err := path.Match(parsed.Token, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", parsed.Token, err)
		}
		matched := 0
		for _, n := range names {
			if MatchGlob(parsed.Token, n) {
				add(n)
				matched++
			}
		}
		if matched == 0 {
			return nil, fmt.Errorf("%w: nothing matches %s", domain.ErrUnknownItem, parsed.Token)
		}
	}
	return out, nil
}
