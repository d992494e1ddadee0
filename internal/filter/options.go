package filter

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/textfile"
)

// NameFilterOptions collects the command line flags that select attributes.
type NameFilterOptions struct {
	Includes     []string
	Excludes     []string
	ExcludeFiles []string
	IgnoreCase   bool
}

// Add registers the flags on f.
func (opts *NameFilterOptions) Add(f *pflag.FlagSet) {
	f.StringArrayVarP(&opts.Includes, "include", "i", nil, "only process attributes matching `pattern` (can be specified multiple times)")
	f.StringArrayVarP(&opts.Excludes, "exclude", "e", nil, "skip attributes matching `pattern` (can be specified multiple times)")
	f.StringArrayVar(&opts.ExcludeFiles, "exclude-file", nil, "read exclude patterns from a `file` (can be specified multiple times)")
	f.BoolVar(&opts.IgnoreCase, "ignore-case", false, "match patterns without regard to case")
}

// Empty reports whether no pattern was given.
func (opts *NameFilterOptions) Empty() bool {
	return len(opts.Includes) == 0 && len(opts.Excludes) == 0 && len(opts.ExcludeFiles) == 0
}

// Build returns a function that reports whether an attribute is selected:
// it matches an include pattern, or there are none, and matches no exclude
// pattern. A nil function is returned when no pattern was given.
func (opts NameFilterOptions) Build(warnf func(msg string, args ...interface{})) (func(name string) bool, error) {
	if opts.Empty() {
		return nil, nil
	}

	excludes := opts.Excludes
	for _, fn := range opts.ExcludeFiles {
		lines, err := textfile.ReadLines(fn)
		if err != nil {
			return nil, errors.Fatalf("--exclude-file: %v", err)
		}
		excludes = append(excludes, lines...)
	}

	if err := ValidatePatterns(opts.Includes); err != nil {
		return nil, errors.Fatalf("--include: %s", err)
	}
	if err := ValidatePatterns(excludes); err != nil {
		return nil, errors.Fatalf("--exclude: %s", err)
	}

	normalize := func(s string) string { return s }
	if opts.IgnoreCase {
		normalize = strings.ToLower
	}

	parse := func(patterns []string) []Pattern {
		res := make([]string, len(patterns))
		for i, p := range patterns {
			res[i] = normalize(p)
		}
		return ParsePatterns(res)
	}
	include := parse(opts.Includes)
	exclude := parse(excludes)

	return func(name string) bool {
		name = normalize(name)

		if len(include) > 0 {
			ok, err := List(include, name)
			if err != nil {
				warnf("error for include pattern: %v", err)
			}
			if !ok {
				debug.Log("attribute %q not included", name)
				return false
			}
		}

		ok, err := List(exclude, name)
		if err != nil {
			warnf("error for exclude pattern: %v", err)
		}
		if ok {
			debug.Log("attribute %q excluded", name)
			return false
		}
		return true
	}, nil
}
