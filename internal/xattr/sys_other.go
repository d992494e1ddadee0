//go:build !linux && !darwin

package xattr

import "github.com/xattrkit/xattrkit/internal/errors"

// errUnsupported is returned by every call on platforms without xattr
// support.
var errUnsupported = errors.New("extended attributes are not supported on this platform")

type unsupportedCalls struct{}

var platformCalls sysCalls = unsupportedCalls{}

func (unsupportedCalls) getxattr(nativeString, nativeString, []byte, Flags) (int, error) {
	return 0, errUnsupported
}

func (unsupportedCalls) setxattr(nativeString, nativeString, []byte, Flags) error {
	return errUnsupported
}

func (unsupportedCalls) removexattr(nativeString, nativeString, Flags) error {
	return errUnsupported
}

func (unsupportedCalls) listxattr(nativeString, []byte, Flags) (int, error) {
	return 0, errUnsupported
}
