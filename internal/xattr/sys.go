package xattr

// sysCalls is the boundary to the kernel. Implementations issue exactly one
// syscall per method (retrying only on EINTR) and return the raw errno.
//
// getxattr and listxattr with an empty dest return the size the kernel needs.
type sysCalls interface {
	getxattr(path, name nativeString, dest []byte, flags Flags) (int, error)
	setxattr(path, name nativeString, value []byte, flags Flags) error
	removexattr(path, name nativeString, flags Flags) error
	listxattr(path nativeString, dest []byte, flags Flags) (int, error)
}
