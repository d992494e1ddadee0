package feature_test

import (
	"strings"
	"testing"

	"github.com/xattrkit/xattrkit/internal/feature"
	rtest "github.com/xattrkit/xattrkit/internal/test"
)

const (
	alpha      = feature.FlagName("alpha-feature")
	beta       = feature.FlagName("beta-feature")
	stable     = feature.FlagName("stable-feature")
	deprecated = feature.FlagName("deprecated-feature")
)

func buildTestFlagSet() *feature.FlagSet {
	flags := feature.New()
	flags.SetFlags(map[feature.FlagName]feature.FlagDesc{
		alpha:      {Type: feature.Alpha, Description: "alpha"},
		beta:       {Type: feature.Beta, Description: "beta"},
		stable:     {Type: feature.Stable, Description: "stable"},
		deprecated: {Type: feature.Deprecated, Description: "deprecated"},
	})
	return flags
}

func noWarn(string) {}

func enabledFlags(flags *feature.FlagSet) map[feature.FlagName]bool {
	res := make(map[feature.FlagName]bool)
	for _, name := range []feature.FlagName{alpha, beta, stable, deprecated} {
		res[name] = flags.Enabled(name)
	}
	return res
}

func TestFeatureApply(t *testing.T) {
	for _, test := range []struct {
		in       string
		want     map[feature.FlagName]bool
		warnings int
	}{
		{
			in:   "",
			want: map[feature.FlagName]bool{alpha: false, beta: true, stable: true, deprecated: false},
		},
		{
			in:   "alpha-feature",
			want: map[feature.FlagName]bool{alpha: true, beta: true, stable: true, deprecated: false},
		},
		{
			in:   " alpha-feature = true , beta-feature=false",
			want: map[feature.FlagName]bool{alpha: true, beta: false, stable: true, deprecated: false},
		},
		{
			in:       "stable-feature=false,deprecated-feature=1",
			want:     map[feature.FlagName]bool{alpha: false, beta: true, stable: true, deprecated: false},
			warnings: 2,
		},
	} {
		t.Run(test.in, func(t *testing.T) {
			flags := buildTestFlagSet()
			var warnings []string
			rtest.OK(t, flags.Apply(test.in, func(s string) { warnings = append(warnings, s) }))
			rtest.Equals(t, test.want, enabledFlags(flags))
			rtest.Equals(t, test.warnings, len(warnings))
		})
	}
}

func TestFeatureApplyInvalid(t *testing.T) {
	for _, test := range []struct {
		in, msg string
	}{
		{"invalid-flag", "unknown feature flag"},
		{"alpha-feature=maybe", "failed to parse value"},
		{"alpha-feature,invalid-flag", "unknown feature flag"},
	} {
		flags := buildTestFlagSet()
		err := flags.Apply(test.in, noWarn)
		rtest.Assert(t, err != nil && strings.Contains(err.Error(), test.msg), "Apply(%q): expected %q error, got: %v", test.in, test.msg, err)
		rtest.Assert(t, !flags.Enabled(alpha), "Apply(%q) changed flags despite the error", test.in)
	}
}

func assertPanic(t *testing.T) {
	if r := recover(); r == nil {
		t.Fatal("should have panicked")
	}
}

func TestFeatureQueryInvalid(t *testing.T) {
	defer assertPanic(t)

	buildTestFlagSet().Enabled("invalid-flag")
}

func TestFeatureSetInvalidPhase(t *testing.T) {
	defer assertPanic(t)

	feature.New().SetFlags(map[feature.FlagName]feature.FlagDesc{
		"invalid": {Type: "invalid"},
	})
}

func TestFeatureList(t *testing.T) {
	rtest.Equals(t, []feature.Help{
		{Name: string(alpha), Type: string(feature.Alpha), Default: false, Description: "alpha"},
		{Name: string(beta), Type: string(feature.Beta), Default: true, Description: "beta"},
		{Name: string(deprecated), Type: string(feature.Deprecated), Default: false, Description: "deprecated"},
		{Name: string(stable), Type: string(feature.Stable), Default: true, Description: "stable"},
	}, buildTestFlagSet().List())
}
