// Package debug writes developer diagnostics. Output is enabled by setting
// DEBUG_LOG to a file name, or by selecting functions and files with
// DEBUG_FUNCS and DEBUG_FILES (comma separated glob patterns, prefixed with
// '-' to disable), which are then printed to stderr.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
)

// rules maps glob patterns to whether matching keys are printed. The
// pattern "all" matches everything not matched otherwise.
type rules map[string]bool

func (r rules) match(key string) bool {
	if v, ok := r[key]; ok {
		return v
	}
	for pattern, v := range r {
		if ok, _ := path.Match(pattern, key); ok {
			return v
		}
	}
	return r["all"]
}

// parseRules reads a DEBUG_FUNCS or DEBUG_FILES value. Each entry is passed
// through normalize before it is validated.
func parseRules(spec string, normalize func(string) string) (rules, error) {
	r := rules{}
	for _, entry := range strings.Split(spec, ",") {
		entry = normalize(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}

		enable := true
		if entry[0] == '-' || entry[0] == '+' {
			enable = entry[0] == '+'
			entry = entry[1:]
		}

		if _, err := path.Match(entry, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", entry, err)
		}
		r[entry] = enable
	}
	return r, nil
}

// fileKey completes a DEBUG_FILES entry to the "dir/file.go:line" form of
// the keys it is matched against.
func fileKey(s string) string {
	if s == "" || s == "all" {
		return s
	}
	if !strings.Contains(s, "/") {
		s = "*/" + s
	}
	if !strings.Contains(s, ":") {
		s += ":*"
	}
	return s
}

type config struct {
	file  *log.Logger
	funcs rules
	files rules
	echo  io.Writer
}

func (c *config) enabled() bool {
	return c.file != nil || len(c.funcs) > 0 || len(c.files) > 0
}

var current atomic.Pointer[config]

// set up before any init() so that package initialization can already log
var _ = setup()

func setup() bool {
	c, err := configFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "debug: %v\n", err)
		os.Exit(2)
	}
	if c.enabled() {
		fmt.Fprintf(os.Stderr, "debug enabled\n")
		current.Store(c)
	}
	return true
}

func configFromEnv() (*config, error) {
	c := &config{echo: os.Stderr}

	if fn := os.Getenv("DEBUG_LOG"); fn != "" {
		f, err := os.OpenFile(fn, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "debug log file %v\n", fn)
		c.file = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	}

	var err error
	c.funcs, err = parseRules(os.Getenv("DEBUG_FUNCS"), func(s string) string { return s })
	if err != nil {
		return nil, fmt.Errorf("DEBUG_FUNCS: %w", err)
	}
	c.files, err = parseRules(os.Getenv("DEBUG_FILES"), fileKey)
	if err != nil {
		return nil, fmt.Errorf("DEBUG_FILES: %w", err)
	}
	return c, nil
}

// caller returns the short function name and "dir/file.go:line" of the
// code that called Log.
func caller() (fn, pos string) {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return "?", "?"
	}
	if f := runtime.FuncForPC(pc); f != nil {
		fn = path.Base(f.Name())
	}
	pos = fmt.Sprintf("%s/%s:%d", filepath.Base(filepath.Dir(file)), filepath.Base(file), line)
	return fn, pos
}

// Log prints a message to the debug log (if debug is enabled).
func Log(f string, args ...interface{}) {
	c := current.Load()
	if c == nil {
		return
	}

	fn, pos := caller()
	msg := fmt.Sprintf(f, args...)
	msg = strings.TrimSuffix(msg, "\n")
	line := fmt.Sprintf("%s\t%s\t%s\n", pos, fn, msg)

	if c.file != nil {
		c.file.Print(line)
	}
	if c.files.match(pos) || c.funcs.match(fn) {
		_, _ = io.WriteString(c.echo, line)
	}
}
