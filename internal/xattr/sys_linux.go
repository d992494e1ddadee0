//go:build linux

package xattr

import (
	"golang.org/x/sys/unix"
)

// linuxCalls issues the xattr syscalls directly, so that the NUL-terminated
// native strings reach the kernel unchanged.
//
// NoFollow selects the l* variants, Create and Replace are translated to
// XATTR_CREATE and XATTR_REPLACE. ShowCompression has no meaning on Linux and
// is dropped; any other bit is forwarded to setxattr for the kernel to judge.
type linuxCalls struct{}

var platformCalls sysCalls = linuxCalls{}

// On Linux, FUSE and CIFS filesystems can return EINTR for interrupted system
// calls, so those are reissued.
func ignoringEINTR(fn func() unix.Errno) error {
	for {
		errno := fn()
		switch errno {
		case 0:
			return nil
		case unix.EINTR:
			continue
		default:
			return errno
		}
	}
}

func pick(flags Flags, follow, nofollow uintptr) uintptr {
	if flags&NoFollow != 0 {
		return nofollow
	}
	return follow
}

func setFlags(flags Flags) uintptr {
	f := uintptr(flags &^ knownFlags)
	if flags&Create != 0 {
		f |= unix.XATTR_CREATE
	}
	if flags&Replace != 0 {
		f |= unix.XATTR_REPLACE
	}
	return f
}

func (linuxCalls) getxattr(path, name nativeString, dest []byte, flags Flags) (int, error) {
	trap := pick(flags, unix.SYS_GETXATTR, unix.SYS_LGETXATTR)

	var n uintptr
	err := ignoringEINTR(func() unix.Errno {
		var errno unix.Errno
		n, _, errno = unix.Syscall6(trap, uintptr(path.ptr()), uintptr(name.ptr()),
			uintptr(bufPtr(dest)), uintptr(len(dest)), 0, 0)
		return errno
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (linuxCalls) setxattr(path, name nativeString, value []byte, flags Flags) error {
	trap := pick(flags, unix.SYS_SETXATTR, unix.SYS_LSETXATTR)

	return ignoringEINTR(func() unix.Errno {
		_, _, errno := unix.Syscall6(trap, uintptr(path.ptr()), uintptr(name.ptr()),
			uintptr(bufPtr(value)), uintptr(len(value)), setFlags(flags), 0)
		return errno
	})
}

func (linuxCalls) removexattr(path, name nativeString, flags Flags) error {
	trap := pick(flags, unix.SYS_REMOVEXATTR, unix.SYS_LREMOVEXATTR)

	return ignoringEINTR(func() unix.Errno {
		_, _, errno := unix.Syscall(trap, uintptr(path.ptr()), uintptr(name.ptr()), 0)
		return errno
	})
}

func (linuxCalls) listxattr(path nativeString, dest []byte, flags Flags) (int, error) {
	trap := pick(flags, unix.SYS_LISTXATTR, unix.SYS_LLISTXATTR)

	var n uintptr
	err := ignoringEINTR(func() unix.Errno {
		var errno unix.Errno
		n, _, errno = unix.Syscall(trap, uintptr(path.ptr()), uintptr(bufPtr(dest)), uintptr(len(dest)))
		return errno
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
