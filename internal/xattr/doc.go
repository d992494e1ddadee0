// Package xattr reads and writes extended attributes of filesystem paths.
//
// Every call converts its path and attribute name into NUL-terminated native
// strings, issues the matching syscall and copies the result back into Go
// owned memory. Values and name lists whose size is not known in advance are
// read with a probe-then-fetch round trip: the first call asks the kernel for
// the required size, the second reads into a buffer of exactly that size. If
// the attribute grows in between, the kernel reports ERANGE and the round
// trip is repeated, up to Config.MaxRetries times.
//
// Paths and names containing a NUL byte are truncated at the first NUL, as
// the kernel only ever sees the part before it.
package xattr
