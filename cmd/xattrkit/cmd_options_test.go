package main

import (
	"strings"
	"testing"

	"github.com/xattrkit/xattrkit/internal/feature"
	"github.com/xattrkit/xattrkit/internal/options"
	rtest "github.com/xattrkit/xattrkit/internal/test"
)

func TestPrintOptions(t *testing.T) {
	buf, _ := withCaptureStdout(func() error {
		printOptions([]options.Help{
			{Namespace: "xattr", Name: "max-retries", Text: "retries"},
			{Namespace: "walker", Name: "seen-cache-size", Text: "cache"},
		})
		return nil
	})

	want := "All Extended Options:\n" +
		"  xattr.max-retries       retries\n" +
		"  walker.seen-cache-size  cache\n"
	rtest.Equals(t, want, buf.String())
}

func TestRegisteredOptions(t *testing.T) {
	buf, _ := withCaptureStdout(func() error {
		printOptions(options.List())
		return nil
	})
	for _, key := range []string{"xattr.max-retries", "xattr.max-buffer-size", "walker.ops-per-second", "walker.seen-cache-size"} {
		rtest.Assert(t, strings.Contains(buf.String(), key), "option %v not listed in\n%s", key, buf.String())
	}
}

func TestPrintFeatures(t *testing.T) {
	buf, err := withCaptureStdout(func() error {
		return printFeatures(feature.Flag.List())
	})
	rtest.OK(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	rtest.Equals(t, "All Feature Flags:", lines[0])
	rtest.Assert(t, strings.HasPrefix(lines[1], "Name"), "missing table header in %q", lines[1])
	rtest.Assert(t, strings.Contains(buf.String(), string(feature.SizeRaceBackoff)), "flag %v not listed", feature.SizeRaceBackoff)
	rtest.Assert(t, strings.Contains(buf.String(), string(feature.StrictAttrNames)), "flag %v not listed", feature.StrictAttrNames)
}
