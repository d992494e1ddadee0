package xattr

import (
	"fmt"
	"strings"
	"syscall"

	pkgxattr "github.com/pkg/xattr"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/errors"
)

var (
	// ErrInputConversion is returned when a path or name cannot be
	// converted into a native string.
	ErrInputConversion = errors.New("cannot convert input to native string")

	// ErrAllocation is returned when a fetch buffer cannot be provided.
	ErrAllocation = errors.New("cannot allocate buffer")

	// ErrSizeRace is returned when an attribute kept changing size between
	// probe and fetch for more than Config.MaxRetries retries.
	ErrSizeRace = errors.New("attribute size changed between probe and fetch")
)

// Error records a failed operation together with everything needed to
// diagnose it without re-running.
type Error struct {
	Op    string
	Path  string
	Name  string
	Flags Flags
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Op)
	for _, s := range []string{e.Path, e.Name} {
		if s != "" {
			b.WriteByte(' ')
			b.WriteString(s)
		}
	}
	if e.Flags != 0 {
		fmt.Fprintf(&b, " (flags %v)", e.Flags)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if errno, ok := e.Errno(); ok {
		fmt.Fprintf(&b, " (errno %d)", int(errno))
	}

	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Errno returns the native error code, if the failure came from a syscall.
func (e *Error) Errno() (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno, true
	}
	return 0, false
}

// sizeRaceError is the cause of an Error when the retry limit was hit. It
// matches both ErrSizeRace and the errno of the last fetch.
type sizeRaceError struct {
	attempts int
	last     error
}

func (e *sizeRaceError) Error() string {
	return fmt.Sprintf("%v (%d attempts): %v", ErrSizeRace, e.attempts, e.last)
}

func (e *sizeRaceError) Unwrap() []error { return []error{ErrSizeRace, e.last} }

// IsNotFound reports whether err means that the attribute does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pkgxattr.ENOATTR)
}

// IsNotExist reports whether err means that the path does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, syscall.ENOENT)
}

// call carries the context of a single operation for error reporting.
type call struct {
	op    string
	path  string
	name  string
	flags Flags
}

func (c call) fail(err error) error {
	e := &Error{Op: c.op, Path: c.path, Name: c.name, Flags: c.flags, Err: err}
	stats.failures.Inc()
	debug.Log("%v", e)
	return e
}
