package xattr

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Stats are process-wide counters over all handles.
type Stats struct {
	// Calls is the number of operations started.
	Calls int64
	// Failures is the number of operations that returned an error.
	Failures int64
	// Retries counts fetches repeated because the size changed after the probe.
	Retries int64
	// SizeRaces counts operations that gave up after MaxRetries retries.
	SizeRaces int64
}

var stats = struct {
	calls, failures, retries, sizeRaces *xsync.Counter
}{
	calls:     xsync.NewCounter(),
	failures:  xsync.NewCounter(),
	retries:   xsync.NewCounter(),
	sizeRaces: xsync.NewCounter(),
}

// ReadStats returns a snapshot of the counters.
func ReadStats() Stats {
	return Stats{
		Calls:     stats.calls.Value(),
		Failures:  stats.failures.Value(),
		Retries:   stats.retries.Value(),
		SizeRaces: stats.sizeRaces.Value(),
	}
}
