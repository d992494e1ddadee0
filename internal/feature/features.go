// Package feature manages feature flags. Flags move through the phases
// alpha, beta, stable and deprecated; only alpha and beta flags can be
// toggled by the user.
package feature

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

type state string

// FlagName identifies a feature flag. Names are written in kebab-case.
type FlagName string

const (
	// Alpha features are disabled by default and may change in arbitrary ways.
	Alpha state = "alpha"
	// Beta features are enabled by default but may still change.
	Beta state = "beta"
	// Stable features are always enabled.
	Stable state = "stable"
	// Deprecated features are always disabled.
	Deprecated state = "deprecated"
)

// defaultFor returns whether a flag in phase is enabled without user input.
func defaultFor(phase state) bool {
	switch phase {
	case Alpha, Deprecated:
		return false
	case Beta, Stable:
		return true
	}
	panic(fmt.Sprintf("unknown feature phase %q", phase))
}

// FlagDesc declares a flag.
type FlagDesc struct {
	Type        state
	Description string
}

type flagState struct {
	FlagDesc
	enabled bool
}

// FlagSet holds the state of a set of feature flags. It is safe for
// concurrent use; flags are normally applied once at startup and then only
// queried.
type FlagSet struct {
	mu    sync.RWMutex
	flags map[FlagName]*flagState
}

func New() *FlagSet {
	return &FlagSet{}
}

// SetFlags replaces all flags of f with flags in their default state.
func (f *FlagSet) SetFlags(flags map[FlagName]FlagDesc) {
	states := make(map[FlagName]*flagState, len(flags))
	for name, desc := range flags {
		states[name] = &flagState{FlagDesc: desc, enabled: defaultFor(desc.Type)}
	}

	f.mu.Lock()
	f.flags = states
	f.mu.Unlock()
}

// parseSelection splits `name[=bool]` entries. A name without value
// enables the flag.
func parseSelection(s string) (map[FlagName]bool, error) {
	selection := make(map[FlagName]bool)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, value, found := strings.Cut(entry, "=")
		enable := true
		if found {
			var err error
			enable, err = strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("failed to parse value %q for feature flag %v: %w", value, name, err)
			}
		}
		selection[FlagName(strings.TrimSpace(name))] = enable
	}
	return selection, nil
}

// Apply parses a comma separated list of `name[=bool]` entries, for example
// from $XATTRKIT_FEATURES, and updates the flag set. Attempts to change
// stable or deprecated flags are reported through logWarning. Nothing is
// changed if an entry is invalid.
func (f *FlagSet) Apply(flags string, logWarning func(string)) error {
	selection, err := parseSelection(flags)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for name := range selection {
		if f.flags[name] == nil {
			return fmt.Errorf("unknown feature flag %q", name)
		}
	}

	for name, enable := range selection {
		flag := f.flags[name]
		switch flag.Type {
		case Alpha, Beta:
			flag.enabled = enable
		case Stable:
			logWarning(fmt.Sprintf("feature flag %q is always enabled and will be removed in a future release", name))
		case Deprecated:
			logWarning(fmt.Sprintf("feature flag %q is always disabled and will be removed in a future release", name))
		}
	}

	return nil
}

// Enabled reports whether a flag is set. It panics for unknown flags.
func (f *FlagSet) Enabled(name FlagName) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	flag, ok := f.flags[name]
	if !ok {
		panic(fmt.Sprintf("unknown feature flag %v", name))
	}
	return flag.enabled
}

// Help contains information about a feature.
type Help struct {
	Name        string
	Type        string
	Default     bool
	Description string
}

// List returns all flags sorted by name.
func (f *FlagSet) List() []Help {
	f.mu.RLock()
	defer f.mu.RUnlock()

	help := make([]Help, 0, len(f.flags))
	for name, flag := range f.flags {
		help = append(help, Help{
			Name:        string(name),
			Type:        string(flag.Type),
			Default:     defaultFor(flag.Type),
			Description: flag.Description,
		})
	}

	slices.SortFunc(help, func(a, b Help) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return help
}
