//go:build darwin

package xattr

import (
	"golang.org/x/sys/unix"
)

// darwinCalls goes through the libSystem wrappers of x/sys/unix, which take
// Go strings; the native strings are handed over up to their first NUL.
//
// NoFollow selects the L* wrappers. Create and Replace use the same bit
// values as XATTR_CREATE and XATTR_REPLACE and are forwarded to setxattr
// together with any unknown bits. The wrappers have no options argument for
// reading, so ShowCompression is not passed on.
type darwinCalls struct{}

var platformCalls sysCalls = darwinCalls{}

func (darwinCalls) getxattr(path, name nativeString, dest []byte, flags Flags) (int, error) {
	if flags&NoFollow != 0 {
		return unix.Lgetxattr(path.String(), name.String(), dest)
	}
	return unix.Getxattr(path.String(), name.String(), dest)
}

func (darwinCalls) setxattr(path, name nativeString, value []byte, flags Flags) error {
	opts := int(flags &^ (NoFollow | ShowCompression))
	if flags&NoFollow != 0 {
		return unix.Lsetxattr(path.String(), name.String(), value, opts)
	}
	return unix.Setxattr(path.String(), name.String(), value, opts)
}

func (darwinCalls) removexattr(path, name nativeString, flags Flags) error {
	if flags&NoFollow != 0 {
		return unix.Lremovexattr(path.String(), name.String())
	}
	return unix.Removexattr(path.String(), name.String())
}

func (darwinCalls) listxattr(path nativeString, dest []byte, flags Flags) (int, error) {
	if flags&NoFollow != 0 {
		return unix.Llistxattr(path.String(), dest)
	}
	return unix.Listxattr(path.String(), dest)
}
