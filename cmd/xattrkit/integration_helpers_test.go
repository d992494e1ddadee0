package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	rtest "github.com/xattrkit/xattrkit/internal/test"
)

func withCaptureStdout(inner func() error) (*bytes.Buffer, error) {
	buf := bytes.NewBuffer(nil)
	oldStdout := globalOptions.stdout
	globalOptions.stdout = buf
	defer func() {
		globalOptions.stdout = oldStdout
	}()

	return buf, inner()
}

func withCaptureStderr(inner func() error) (*bytes.Buffer, error) {
	buf := bytes.NewBuffer(nil)
	oldStderr := globalOptions.stderr
	globalOptions.stderr = buf
	defer func() {
		globalOptions.stderr = oldStderr
	}()

	return buf, inner()
}

func testGlobalOptions(t testing.TB, extended ...string) GlobalOptions {
	gopts := GlobalOptions{Options: extended}
	rtest.OK(t, gopts.PreRun())
	return gopts
}

// testSetupTree creates files with user attributes support, skipping the
// test if the filesystem has none.
func testSetupTree(t testing.TB, files ...string) string {
	dir := rtest.TempDir(t)
	for _, fn := range files {
		p := filepath.Join(dir, filepath.FromSlash(fn))
		rtest.OK(t, os.MkdirAll(filepath.Dir(p), 0o700))
		rtest.OK(t, os.WriteFile(p, []byte(fn), 0o600))
	}
	rtest.SkipUnlessXattrs(t, dir)
	return dir
}

func testRunSet(t testing.TB, gopts GlobalOptions, path, name, value string) {
	t.Helper()
	rtest.OK(t, runSet(context.TODO(), SetOptions{}, gopts, []string{path, name, value}))
}

func testRunGet(t testing.TB, gopts GlobalOptions, path, name string) string {
	t.Helper()
	buf, err := withCaptureStdout(func() error {
		return runGet(context.TODO(), GetOptions{Raw: true}, gopts, []string{path, name})
	})
	rtest.OK(t, err)
	return buf.String()
}

func writeLines(filename string, lines ...string) error {
	return os.WriteFile(filename, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}
