package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	pkgxattr "github.com/pkg/xattr"

	rtest "github.com/xattrkit/xattrkit/internal/test"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

func TestSetGet(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)

	testRunSet(t, gopts, fn, "user.greeting", "hello")
	rtest.OK(t, runSet(context.TODO(), SetOptions{Hex: true}, gopts, []string{fn, "user.bin", "00ff10"}))
	rtest.OK(t, runSet(context.TODO(), SetOptions{}, gopts, []string{fn, "user.empty"}))

	buf, err := withCaptureStdout(func() error {
		return runGet(context.TODO(), GetOptions{}, gopts, []string{fn, "user.greeting"})
	})
	rtest.OK(t, err)
	rtest.Equals(t, "hello\n", buf.String())

	rtest.Equals(t, "\x00\xff\x10", testRunGet(t, gopts, fn, "user.bin"))
	rtest.Equals(t, "", testRunGet(t, gopts, fn, "user.empty"))

	buf, err = withCaptureStdout(func() error {
		return runGet(context.TODO(), GetOptions{Hex: true}, gopts, []string{fn, "user.bin"})
	})
	rtest.OK(t, err)
	rtest.Assert(t, strings.HasPrefix(buf.String(), "00000000  00 ff 10"), "unexpected hex dump %q", buf.String())

	value, err := pkgxattr.Get(fn, "user.greeting")
	rtest.OK(t, err)
	rtest.Equals(t, []byte("hello"), value)
}

func TestGetTrailingNUL(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)
	rtest.OK(t, runSet(context.TODO(), SetOptions{}, gopts, []string{fn, "user.cstr", "0x686900"}))

	buf, err := withCaptureStdout(func() error {
		return runGet(context.TODO(), GetOptions{}, gopts, []string{fn, "user.cstr"})
	})
	rtest.OK(t, err)
	rtest.Equals(t, "hi\n", buf.String())

	rtest.Equals(t, "hi\x00", testRunGet(t, gopts, fn, "user.cstr"))
}

func TestGetJSON(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)
	testRunSet(t, gopts, fn, "user.greeting", "hello")

	gopts.JSON = true
	buf, err := withCaptureStdout(func() error {
		return runGet(context.TODO(), GetOptions{}, gopts, []string{fn, "user.greeting"})
	})
	rtest.OK(t, err)

	var out getJSON
	rtest.OK(t, json.Unmarshal(buf.Bytes(), &out))
	rtest.Equals(t, getJSON{Path: fn, Name: "user.greeting", Value: []byte("hello")}, out)
}

func TestGetMissing(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")

	err := runGet(context.TODO(), GetOptions{}, testGlobalOptions(t), []string{fn, "user.missing"})
	rtest.Assert(t, xattr.IsNotFound(err), "expected not found error, got %v", err)
	rtest.Equals(t, 1, exitCode(err))
}

func TestSetCreateReplace(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)

	err := runSet(context.TODO(), SetOptions{Replace: true}, gopts, []string{fn, "user.a", "1"})
	rtest.Assert(t, xattr.IsNotFound(err), "replace of a missing attribute returned %v", err)

	rtest.OK(t, runSet(context.TODO(), SetOptions{Create: true}, gopts, []string{fn, "user.a", "1"}))
	err = runSet(context.TODO(), SetOptions{Create: true}, gopts, []string{fn, "user.a", "2"})
	rtest.Assert(t, err != nil, "create of an existing attribute succeeded")

	rtest.OK(t, runSet(context.TODO(), SetOptions{Replace: true}, gopts, []string{fn, "user.a", "2"}))
	rtest.Equals(t, "2", testRunGet(t, gopts, fn, "user.a"))
}

func TestListLong(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)

	testRunSet(t, gopts, fn, "user.one", "1")
	testRunSet(t, gopts, fn, "user.three", "333")

	buf, err := withCaptureStdout(func() error {
		return runList(context.TODO(), ListOptions{Long: true}, gopts, []string{fn})
	})
	rtest.OK(t, err)

	lines := strings.Split(buf.String(), "\n")
	for _, want := range []string{
		fmt.Sprintf("%10d  %s", 1, "user.one"),
		fmt.Sprintf("%10d  %s", 3, "user.three"),
	} {
		found := false
		for _, line := range lines {
			found = found || line == want
		}
		rtest.Assert(t, found, "line %q not found in output:\n%s", want, buf.String())
	}
}

func TestListFilterJSON(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)

	testRunSet(t, gopts, fn, "user.keep", "1")
	testRunSet(t, gopts, fn, "user.skip", "2")

	gopts.JSON = true
	opts := ListOptions{}
	opts.Includes = []string{"user.keep"}
	buf, err := withCaptureStdout(func() error {
		return runList(context.TODO(), opts, gopts, []string{fn})
	})
	rtest.OK(t, err)

	var out listJSON
	rtest.OK(t, json.Unmarshal(buf.Bytes(), &out))
	rtest.Equals(t, listJSON{Path: fn, Attrs: []listEntryJSON{{Name: "user.keep"}}}, out)
}

func TestSizeExists(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)
	testRunSet(t, gopts, fn, "user.a", "12345")

	buf, err := withCaptureStdout(func() error {
		return runSize(context.TODO(), gopts, []string{fn, "user.a"})
	})
	rtest.OK(t, err)
	rtest.Equals(t, "5\n", buf.String())

	buf, err = withCaptureStdout(func() error {
		return runExists(context.TODO(), gopts, []string{fn, "user.a"})
	})
	rtest.OK(t, err)
	rtest.Equals(t, "true\n", buf.String())

	buf, err = withCaptureStdout(func() error {
		return runExists(context.TODO(), gopts, []string{fn, "user.b"})
	})
	rtest.ErrorIs(t, err, ErrNotFound)
	rtest.Equals(t, 2, exitCode(err))
	rtest.Equals(t, "false\n", buf.String())
}

func TestRm(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)
	testRunSet(t, gopts, fn, "user.a", "1")
	testRunSet(t, gopts, fn, "user.b", "2")

	rtest.OK(t, runRm(context.TODO(), RmOptions{}, gopts, []string{fn, "user.a", "user.b"}))
	names, err := pkgxattr.List(fn)
	rtest.OK(t, err)
	for _, name := range names {
		rtest.Assert(t, !strings.HasPrefix(name, "user."), "attribute %v still present", name)
	}

	err = runRm(context.TODO(), RmOptions{}, gopts, []string{fn, "user.a"})
	rtest.Assert(t, xattr.IsNotFound(err), "expected not found error, got %v", err)

	rtest.OK(t, runRm(context.TODO(), RmOptions{Force: true}, gopts, []string{fn, "user.a"}))
	rtest.OK(t, runRm(context.TODO(), RmOptions{Force: true}, gopts, []string{filepath.Join(dir, "missing"), "user.a"}))
}

func TestCopy(t *testing.T) {
	dir := testSetupTree(t, "src", "dst")
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	gopts := testGlobalOptions(t)

	testRunSet(t, gopts, src, "user.a", "a")
	testRunSet(t, gopts, src, "user.private", "secret")
	testRunSet(t, gopts, dst, "user.stale", "old")

	opts := CopyOptions{}
	opts.Excludes = []string{"user.private"}
	rtest.OK(t, runCopy(context.TODO(), opts, gopts, []string{src, dst}))

	rtest.Equals(t, "a", testRunGet(t, gopts, dst, "user.a"))
	for _, name := range []string{"user.private", "user.stale"} {
		_, err := pkgxattr.Get(dst, name)
		rtest.Assert(t, err != nil, "attribute %v copied or kept", name)
	}
}

func TestListValues(t *testing.T) {
	dir := testSetupTree(t, "file")
	fn := filepath.Join(dir, "file")
	gopts := testGlobalOptions(t)
	testRunSet(t, gopts, fn, "user.text", "hi")
	rtest.OK(t, runSet(context.TODO(), SetOptions{}, gopts, []string{fn, "user.bin", "0x0001"}))

	opts := ListOptions{Values: true}
	opts.Includes = []string{"user.*"}
	buf, err := withCaptureStdout(func() error {
		return runList(context.TODO(), opts, gopts, []string{fn})
	})
	rtest.OK(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	sort.Strings(lines)
	rtest.Equals(t, []string{`user.bin=0x0001`, `user.text="hi"`}, lines)
}
