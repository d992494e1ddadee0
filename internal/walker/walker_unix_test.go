//go:build unix

package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	rtest "github.com/xattrkit/xattrkit/internal/test"
)

func TestWalkHardlinks(t *testing.T) {
	dir := createTree(t, "a", "sub/")
	rtest.OK(t, os.Link(filepath.Join(dir, "a"), filepath.Join(dir, "sub", "b")))

	opts := NewOptions()
	opts.Recursive = true
	opts.Jobs = 1

	var c collector
	rtest.OK(t, newWalker(t, opts).Walk(context.TODO(), []string{dir}, c.visit))
	rtest.Equals(t, []string{"./", "a", "sub/"}, c.relative(t, dir))

	opts.SeenCacheSize = 0
	c = collector{}
	rtest.OK(t, newWalker(t, opts).Walk(context.TODO(), []string{dir}, c.visit))
	rtest.Equals(t, []string{"./", "a", "sub/", "sub/b"}, c.relative(t, dir))
}

func TestWalkSymlinkNotFollowed(t *testing.T) {
	dir := createTree(t, "target/x")
	rtest.OK(t, os.Symlink(filepath.Join(dir, "target"), filepath.Join(dir, "link")))

	opts := NewOptions()
	opts.Recursive = true

	var c collector
	rtest.OK(t, newWalker(t, opts).Walk(context.TODO(), []string{dir}, c.visit))
	rtest.Equals(t, []string{"./", "link", "target/", "target/x"}, c.relative(t, dir))
}
