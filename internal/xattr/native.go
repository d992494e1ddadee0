package xattr

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/xattrkit/xattrkit/internal/errors"
)

// maxNativeString bounds paths and names accepted for conversion. The kernel
// rejects anything near this long anyway (PATH_MAX, XATTR_NAME_MAX), so
// longer input is treated as a conversion failure rather than copied.
const maxNativeString = 1 << 20

// nativeString is a NUL-terminated copy of a path or an attribute name, as
// handed to the kernel.
type nativeString []byte

func toNativeString(s string) (nativeString, error) {
	if len(s) >= maxNativeString {
		return nil, errors.Wrapf(ErrInputConversion, "input of %d bytes exceeds %d", len(s), maxNativeString)
	}

	buf := make(nativeString, len(s)+1)
	copy(buf, s)
	return buf, nil
}

// ptr returns the address of the first byte, for passing to a syscall.
func (s nativeString) ptr() unsafe.Pointer {
	return unsafe.Pointer(&s[0])
}

// String returns the string the kernel sees, which ends at the first NUL.
func (s nativeString) String() string {
	for i, b := range s {
		if b == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}

// bufPtr returns the address of dest, or nil for an empty destination. A
// nil destination with zero capacity asks the kernel for the required size.
func bufPtr(dest []byte) unsafe.Pointer {
	if len(dest) == 0 {
		return nil
	}
	return unsafe.Pointer(&dest[0])
}

// hostBytes copies the first n bytes of buf into a new slice. The result is
// never nil: an empty value is returned as []byte{} so that callers can tell
// it apart from a missing attribute.
func hostBytes(buf []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, buf[:n])
	return out
}

// pooledBufferSize matches the Linux limit for both a single value and a
// complete name list (XATTR_SIZE_MAX, XATTR_LIST_MAX). Larger requests, which
// only happen on darwin, are allocated directly.
const pooledBufferSize = 64 * 1024

// bufferPool hands out fetch buffers. Each buffer must be returned with
// release exactly once, before the operation that acquired it returns.
type bufferPool struct {
	pool        sync.Pool
	max         int
	outstanding atomic.Int64
}

func newBufferPool(max int) *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() any {
				buf := make([]byte, pooledBufferSize)
				return &buf
			},
		},
		max: max,
	}
}

func (p *bufferPool) acquire(n int) ([]byte, error) {
	if n < 0 || n > p.max {
		return nil, errors.Wrapf(ErrAllocation, "buffer of %d bytes exceeds limit of %d", n, p.max)
	}

	p.outstanding.Add(1)
	if n <= pooledBufferSize {
		buf := p.pool.Get().(*[]byte)
		return (*buf)[:n], nil
	}

	return make([]byte, n), nil
}

func (p *bufferPool) release(buf []byte) {
	p.outstanding.Add(-1)
	if cap(buf) == pooledBufferSize {
		buf = buf[:pooledBufferSize]
		p.pool.Put(&buf)
	}
}

// inUse returns the number of buffers currently handed out.
func (p *bufferPool) inUse() int64 {
	return p.outstanding.Load()
}
