// Package filter selects extended attributes by name. Patterns are matched
// per dot-separated component with path.Match syntax, and a component "**"
// matches any number of components: "user.*" matches "user.comment" but not
// "user.xdg.origin.url", "user.**" matches both.
package filter

import (
	"path"
	"strings"

	"github.com/xattrkit/xattrkit/internal/errors"
)

// Pattern is a preparsed name pattern.
type Pattern []string

// ParsePattern splits pattern into its components.
func ParsePattern(pattern string) Pattern {
	return strings.Split(pattern, ".")
}

// ParsePatterns prepares a list of patterns, skipping empty ones.
func ParsePatterns(patterns []string) []Pattern {
	res := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		res = append(res, ParsePattern(p))
	}
	return res
}

// ValidatePatterns returns an error listing every malformed pattern.
func ValidatePatterns(patterns []string) error {
	var invalid []string
	for _, p := range patterns {
		for _, comp := range ParsePattern(p) {
			if _, err := path.Match(comp, ""); err != nil {
				invalid = append(invalid, p)
				break
			}
		}
	}

	if len(invalid) > 0 {
		return errors.Errorf("invalid pattern(s) provided:\n%s", strings.Join(invalid, "\n"))
	}
	return nil
}

// Match reports whether name matches pattern as a whole.
func Match(pattern, name string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	return ParsePattern(pattern).Match(name)
}

// Match reports whether name matches p.
func (p Pattern) Match(name string) (bool, error) {
	return match(p, strings.Split(name, "."))
}

func match(p Pattern, comps []string) (bool, error) {
	for i, pc := range p {
		if pc == "**" {
			rest := p[i+1:]
			// try every split of the remaining components, shortest first
			for skip := 0; skip <= len(comps)-i; skip++ {
				ok, err := match(rest, comps[i+skip:])
				if err != nil || ok {
					return ok, err
				}
			}
			return false, nil
		}

		if i >= len(comps) {
			return false, nil
		}

		ok, err := path.Match(pc, comps[i])
		if err != nil {
			return false, errors.Wrap(err, "Match")
		}
		if !ok {
			return false, nil
		}
	}

	return len(p) == len(comps), nil
}

// List reports whether name matches any of patterns.
func List(patterns []Pattern, name string) (bool, error) {
	for _, p := range patterns {
		ok, err := p.Match(name)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
