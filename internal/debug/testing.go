package debug

import (
	"log"
	"os"
	"testing"
)

// TestLogToStderr sends debug output to stderr for the duration of a test,
// unless a debug log is already configured. It reports whether logging was
// switched on.
func TestLogToStderr(t testing.TB) bool {
	if current.Load() != nil {
		return false
	}
	current.Store(&config{file: log.New(os.Stderr, "", log.LstdFlags), echo: os.Stderr})
	t.Cleanup(func() { TestDisableLog(t) })
	return true
}

// TestDisableLog turns debug output off again.
func TestDisableLog(_ testing.TB) {
	current.Store(nil)
}
