package xattr

import (
	"sync"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/feature"
	"github.com/xattrkit/xattrkit/internal/options"
)

// Config tunes a Handle. It can be filled from extended options
// (`-o xattr.max-retries=3`).
type Config struct {
	MaxRetries    uint             `option:"max-retries" help:"retries when an attribute changes size while being read (default: 8)"`
	MaxBufferSize options.ByteSize `option:"max-buffer-size" help:"largest value or name list that is read (default: 64MiB)"`
}

// NewConfig returns the default configuration.
func NewConfig() Config {
	return Config{
		MaxRetries:    8,
		MaxBufferSize: 64 << 20,
	}
}

func init() {
	options.Register("xattr", Config{})
}

// Handle performs attribute operations with a fixed configuration. It is
// safe for concurrent use.
type Handle struct {
	cfg     Config
	sys     sysCalls
	buffers *bufferPool
}

// New returns a Handle using the platform syscalls. Callers should start
// from NewConfig. A zero MaxBufferSize selects the default limit, a zero
// MaxRetries disables retrying.
func New(cfg Config) *Handle {
	return newHandle(cfg, platformCalls)
}

func newHandle(cfg Config, sys sysCalls) *Handle {
	if cfg.MaxBufferSize == 0 {
		cfg.MaxBufferSize = NewConfig().MaxBufferSize
	}
	return &Handle{
		cfg:     cfg,
		sys:     sys,
		buffers: newBufferPool(int(cfg.MaxBufferSize)),
	}
}

var (
	initOnce      sync.Once
	defaultHandle *Handle
)

// Init sets up the package level handle used by Get, Set and friends. It is
// idempotent and safe to call concurrently; every package level function
// calls it.
func Init() {
	initOnce.Do(func() {
		defaultHandle = New(NewConfig())
		debug.Log("xattr initialized, config %+v", defaultHandle.cfg)
	})
}

// Default returns the package level handle.
func Default() *Handle {
	Init()
	return defaultHandle
}

func nativePair(path, name string) (nativeString, nativeString, error) {
	p, err := toNativeString(path)
	if err != nil {
		return nil, nil, err
	}
	n, err := toNativeString(name)
	if err != nil {
		return nil, nil, err
	}
	return p, n, nil
}

// Get returns the value of attribute name of path. An empty value is
// returned as a non-nil empty slice; a missing attribute is an error for
// which IsNotFound returns true.
func (h *Handle) Get(path, name string, flags Flags) ([]byte, error) {
	stats.calls.Inc()
	c := call{op: "getxattr", path: path, name: name, flags: flags}

	p, n, err := nativePair(path, name)
	if err != nil {
		return nil, c.fail(err)
	}

	var value []byte
	err = h.probeFetch(c, func(dest []byte) (int, error) {
		return h.sys.getxattr(p, n, dest, flags)
	}, func(buf []byte) error {
		value = hostBytes(buf, len(buf))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores value as attribute name of path. Create and Replace in flags
// restrict the call to new or existing attributes.
func (h *Handle) Set(path, name string, value []byte, flags Flags) error {
	stats.calls.Inc()
	c := call{op: "setxattr", path: path, name: name, flags: flags}

	p, n, err := nativePair(path, name)
	if err != nil {
		return c.fail(err)
	}

	if err := h.sys.setxattr(p, n, value, flags); err != nil {
		return c.fail(err)
	}
	return nil
}

// Remove deletes attribute name of path. With force set, a missing
// attribute or a missing path is not an error.
func (h *Handle) Remove(path, name string, flags Flags, force bool) error {
	stats.calls.Inc()
	c := call{op: "removexattr", path: path, name: name, flags: flags}

	p, n, err := nativePair(path, name)
	if err != nil {
		return c.fail(err)
	}

	err = h.sys.removexattr(p, n, flags)
	if err == nil {
		return nil
	}
	if force && (IsNotFound(err) || IsNotExist(err)) {
		debug.Log("removexattr %v %v: ignoring %v", path, name, err)
		return nil
	}
	return c.fail(err)
}

// List returns the attribute names of path in the order the kernel reports
// them. A path without attributes yields an empty, non-nil slice.
func (h *Handle) List(path string, flags Flags) ([]string, error) {
	stats.calls.Inc()
	c := call{op: "listxattr", path: path, flags: flags}

	p, err := toNativeString(path)
	if err != nil {
		return nil, c.fail(err)
	}

	strict := feature.Flag.Enabled(feature.StrictAttrNames)

	var names []string
	err = h.probeFetch(c, func(dest []byte) (int, error) {
		return h.sys.listxattr(p, dest, flags)
	}, func(buf []byte) (err error) {
		names, err = splitNames(buf, strict)
		return err
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// Size returns the length of the value of attribute name without reading
// the value itself.
func (h *Handle) Size(path, name string, flags Flags) (int64, error) {
	stats.calls.Inc()
	c := call{op: "sizexattr", path: path, name: name, flags: flags}

	p, n, err := nativePair(path, name)
	if err != nil {
		return 0, c.fail(err)
	}

	size, err := h.sys.getxattr(p, n, nil, flags)
	if err != nil {
		return 0, c.fail(err)
	}
	return int64(size), nil
}

// Exists reports whether attribute name is set on path. It is based on
// Size: a missing attribute yields false, any other failure is returned.
func (h *Handle) Exists(path, name string, flags Flags) (bool, error) {
	_, err := h.Size(path, name, flags)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Get calls Get on the package level handle.
func Get(path, name string, flags Flags) ([]byte, error) {
	return Default().Get(path, name, flags)
}

// Set calls Set on the package level handle.
func Set(path, name string, value []byte, flags Flags) error {
	return Default().Set(path, name, value, flags)
}

// Remove calls Remove on the package level handle.
func Remove(path, name string, flags Flags, force bool) error {
	return Default().Remove(path, name, flags, force)
}

// List calls List on the package level handle.
func List(path string, flags Flags) ([]string, error) {
	return Default().List(path, flags)
}

// Size calls Size on the package level handle.
func Size(path, name string, flags Flags) (int64, error) {
	return Default().Size(path, name, flags)
}

// Exists calls Exists on the package level handle.
func Exists(path, name string, flags Flags) (bool, error) {
	return Default().Exists(path, name, flags)
}
