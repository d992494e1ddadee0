//go:build linux

package xattr_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"testing"

	pkgxattr "github.com/pkg/xattr"
	"golang.org/x/sync/errgroup"

	"github.com/xattrkit/xattrkit/internal/errors"
	rtest "github.com/xattrkit/xattrkit/internal/test"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

func xattrFile(t *testing.T) string {
	fn := rtest.TempFile(t, "file")
	rtest.SkipUnlessXattrs(t, fn)
	return fn
}

func TestRoundTrip(t *testing.T) {
	fn := xattrFile(t)

	var tests = []struct {
		name  string
		value []byte
	}{
		{"user.text", []byte("hello")},
		{"user.empty", []byte{}},
		{"user.binary", []byte{0, 1, 2, 0, 255}},
		{"user.random", rtest.Random(5, 1500)},
	}

	for _, test := range tests {
		rtest.OK(t, xattr.Set(fn, test.name, test.value, 0))

		v, err := xattr.Get(fn, test.name, 0)
		rtest.OK(t, err)
		rtest.Equals(t, test.value, v)

		size, err := xattr.Size(fn, test.name, 0)
		rtest.OK(t, err)
		rtest.Equals(t, int64(len(test.value)), size)

		ok, err := xattr.Exists(fn, test.name, 0)
		rtest.OK(t, err)
		rtest.Assert(t, ok, "%v does not exist", test.name)
	}
}

func TestLargeValue(t *testing.T) {
	fn := xattrFile(t)
	value := rtest.Random(7, 64*1024)

	// most filesystems limit values to a single block
	if err := pkgxattr.Set(fn, "user.large", value); err != nil {
		t.Skipf("filesystem refuses 64 KiB values: %v", err)
	}

	v, err := xattr.Get(fn, "user.large", 0)
	rtest.OK(t, err)
	rtest.Assert(t, bytes.Equal(value, v), "value differs")
}

func TestMissing(t *testing.T) {
	fn := xattrFile(t)

	_, err := xattr.Get(fn, "user.missing", 0)
	rtest.Assert(t, xattr.IsNotFound(err), "expected not found, got %v", err)

	var xerr *xattr.Error
	rtest.Assert(t, errors.As(err, &xerr), "wrong error type %T", err)
	rtest.Equals(t, "getxattr", xerr.Op)
	rtest.Equals(t, fn, xerr.Path)
	rtest.Equals(t, "user.missing", xerr.Name)

	ok, err := xattr.Exists(fn, "user.missing", 0)
	rtest.OK(t, err)
	rtest.Assert(t, !ok, "missing attribute exists")

	_, err = xattr.Get(filepath.Join(filepath.Dir(fn), "nonexistent"), "user.a", 0)
	rtest.Assert(t, xattr.IsNotExist(err), "expected not exist, got %v", err)

	_, err = xattr.Exists(filepath.Join(filepath.Dir(fn), "nonexistent"), "user.a", 0)
	rtest.Assert(t, xattr.IsNotExist(err), "expected not exist, got %v", err)
}

func TestList(t *testing.T) {
	fn := xattrFile(t)

	names, err := xattr.List(fn, 0)
	rtest.OK(t, err)
	rtest.Equals(t, []string{}, userNames(names))

	want := []string{"user.a", "user.b", "user.c"}
	for _, name := range want {
		rtest.OK(t, xattr.Set(fn, name, []byte(name), 0))
	}

	names, err = xattr.List(fn, 0)
	rtest.OK(t, err)
	got := userNames(names)
	sort.Strings(got)
	rtest.Equals(t, want, got)
}

// userNames drops attributes outside the user namespace, e.g. security.selinux.
func userNames(names []string) []string {
	res := []string{}
	for _, name := range names {
		if strings.HasPrefix(name, "user.") {
			res = append(res, name)
		}
	}
	return res
}

func TestRemove(t *testing.T) {
	fn := xattrFile(t)

	rtest.OK(t, xattr.Set(fn, "user.a", []byte("x"), 0))
	rtest.OK(t, xattr.Remove(fn, "user.a", 0, false))

	err := xattr.Remove(fn, "user.a", 0, false)
	rtest.Assert(t, xattr.IsNotFound(err), "expected not found, got %v", err)

	rtest.OK(t, xattr.Remove(fn, "user.a", 0, true))
	rtest.OK(t, xattr.Remove(filepath.Join(filepath.Dir(fn), "nonexistent"), "user.a", 0, true))

	err = xattr.Remove(fn, "", 0, true)
	rtest.Assert(t, err != nil, "removing an empty name succeeded")
}

func TestCreateReplace(t *testing.T) {
	fn := xattrFile(t)

	err := xattr.Set(fn, "user.a", []byte("1"), xattr.Replace)
	rtest.Assert(t, xattr.IsNotFound(err), "expected not found, got %v", err)

	rtest.OK(t, xattr.Set(fn, "user.a", []byte("1"), xattr.Create))

	err = xattr.Set(fn, "user.a", []byte("2"), xattr.Create)
	rtest.ErrorIs(t, err, syscall.EEXIST)

	rtest.OK(t, xattr.Set(fn, "user.a", []byte("2"), xattr.Replace))

	v, err := xattr.Get(fn, "user.a", 0)
	rtest.OK(t, err)
	rtest.Equals(t, []byte("2"), v)
}

func TestNoFollow(t *testing.T) {
	fn := xattrFile(t)
	link := filepath.Join(filepath.Dir(fn), "link")
	rtest.OK(t, os.Symlink(fn, link))

	rtest.OK(t, xattr.Set(link, "user.a", []byte("target"), 0))

	v, err := xattr.Get(fn, "user.a", 0)
	rtest.OK(t, err)
	rtest.Equals(t, []byte("target"), v)

	// user attributes are not permitted on the symlink itself
	_, err = xattr.Get(link, "user.a", xattr.NoFollow)
	rtest.Assert(t, xattr.IsNotFound(err), "expected not found, got %v", err)
}

func TestCrossCheck(t *testing.T) {
	fn := xattrFile(t)

	value := rtest.Random(11, 200)
	rtest.OK(t, xattr.Set(fn, "user.ours", value, 0))

	v, err := pkgxattr.Get(fn, "user.ours")
	rtest.OK(t, err)
	rtest.Equals(t, value, v)

	rtest.OK(t, pkgxattr.Set(fn, "user.theirs", []byte("other")))

	v, err = xattr.Get(fn, "user.theirs", 0)
	rtest.OK(t, err)
	rtest.Equals(t, []byte("other"), v)

	want, err := pkgxattr.List(fn)
	rtest.OK(t, err)
	got, err := xattr.List(fn, 0)
	rtest.OK(t, err)
	rtest.Equals(t, want, got)
}

func TestConcurrent(t *testing.T) {
	dir := rtest.TempDir(t)
	rtest.SkipUnlessXattrs(t, dir)

	var wg errgroup.Group
	for i := 0; i < 16; i++ {
		i := i
		fn := filepath.Join(dir, fmt.Sprintf("file-%d", i))
		rtest.OK(t, os.WriteFile(fn, nil, 0o600))

		wg.Go(func() error {
			for j := 0; j < 20; j++ {
				name := fmt.Sprintf("user.attr%d", j%4)
				value := rtest.Random(i*100+j, 50+j)

				if err := xattr.Set(fn, name, value, 0); err != nil {
					return err
				}
				v, err := xattr.Get(fn, name, 0)
				if err != nil {
					return err
				}
				if !bytes.Equal(value, v) {
					return fmt.Errorf("%v %v: got %x, want %x", fn, name, v, value)
				}
				if _, err := xattr.List(fn, 0); err != nil {
					return err
				}
			}
			return nil
		})
	}

	rtest.OK(t, wg.Wait())
}

func TestCopyAttributes(t *testing.T) {
	src := xattrFile(t)
	dst := xattrFile(t)

	rtest.OK(t, xattr.Set(src, "user.a", []byte("1"), 0))
	rtest.OK(t, xattr.Set(src, "user.b", []byte{}, 0))
	rtest.OK(t, xattr.Set(dst, "user.b", []byte("old"), 0))
	rtest.OK(t, xattr.Set(dst, "user.stale", []byte("x"), 0))
	rtest.OK(t, xattr.Set(dst, "user.private", []byte("p"), 0))

	filter := func(name string) bool {
		return strings.HasPrefix(name, "user.") && name != "user.private"
	}
	rtest.OK(t, xattr.Copy(src, dst, 0, filter))

	attrs, err := xattr.Dump(dst, 0)
	rtest.OK(t, err)

	got := make(map[string]string)
	for _, attr := range attrs {
		got[attr.Name] = string(attr.Value)
	}
	delete(got, "security.selinux")

	rtest.Equals(t, map[string]string{
		"user.a":       "1",
		"user.b":       "",
		"user.private": "p",
	}, got)
}
