package xattr

import (
	"bytes"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/feature"
)

// queryFunc issues one getxattr or listxattr call into dest. An empty dest
// queries the required size.
type queryFunc func(dest []byte) (int, error)

// probeFetch runs the size-then-fetch protocol. accept receives the fetched
// bytes while the buffer is still held and must copy what it keeps. It is
// called with an empty slice if the kernel reports a size of zero.
//
// A fetch failing with ERANGE means the object grew after the probe; the
// buffer is released and the protocol starts over, at most MaxRetries times.
func (h *Handle) probeFetch(c call, query queryFunc, accept func([]byte) error) error {
	attempts := 0

	round := func() error {
		attempts++

		n, err := query(nil)
		if err != nil {
			return backoff.Permanent(c.fail(err))
		}
		if n == 0 {
			return backoff.Permanent(acceptOrFail(c, accept, nil))
		}

		buf, err := h.buffers.acquire(n)
		if err != nil {
			return backoff.Permanent(c.fail(err))
		}
		defer h.buffers.release(buf)

		n2, err := query(buf)
		if errors.Is(err, syscall.ERANGE) {
			return err
		}
		if err != nil {
			return backoff.Permanent(c.fail(err))
		}
		if n2 > len(buf) {
			return syscall.ERANGE
		}

		// the object may have shrunk, n2 is authoritative
		return backoff.Permanent(acceptOrFail(c, accept, buf[:n2]))
	}

	notify := func(err error, wait time.Duration) {
		stats.retries.Inc()
		debug.Log("%v %v %v: size changed after probe (%v), retry %d in %v", c.op, c.path, c.name, err, attempts, wait)
	}

	err := backoff.RetryNotify(round, h.sizeRaceBackOff(), notify)
	if err == nil {
		return nil
	}

	var xerr *Error
	if errors.As(err, &xerr) {
		return err
	}

	stats.sizeRaces.Inc()
	return c.fail(&sizeRaceError{attempts: attempts, last: err})
}

func acceptOrFail(c call, accept func([]byte) error, buf []byte) error {
	if err := accept(buf); err != nil {
		return c.fail(err)
	}
	return nil
}

func (h *Handle) sizeRaceBackOff() backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if feature.Flag.Enabled(feature.SizeRaceBackoff) {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = time.Millisecond
		eb.MaxInterval = 100 * time.Millisecond
		b = eb
	}

	return backoff.WithMaxRetries(b, uint64(h.cfg.MaxRetries))
}

// splitNames converts a listxattr result, a sequence of NUL-terminated
// names, into strings in kernel order. With strict set, a name that is not
// valid UTF-8 fails the whole list.
func splitNames(buf []byte, strict bool) ([]string, error) {
	count := bytes.Count(buf, []byte{0})
	if len(buf) > 0 && buf[len(buf)-1] != 0 {
		count++
	}

	names := make([]string, 0, count)
	for len(buf) > 0 {
		end := bytes.IndexByte(buf, 0)
		if end < 0 {
			end = len(buf)
		}

		name := buf[:end]
		if strict && !utf8.Valid(name) {
			return nil, errors.Wrapf(ErrInputConversion, "attribute name %q is not valid UTF-8", name)
		}
		names = append(names, string(name))

		if end == len(buf) {
			break
		}
		buf = buf[end+1:]
	}

	return names, nil
}
