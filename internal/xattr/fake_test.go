package xattr

import (
	"sync"
	"syscall"

	pkgxattr "github.com/pkg/xattr"
)

// fakeSys keeps the attributes of a single path in memory. beforeFetch is
// called before every fetch with a non-empty destination, so tests can
// change attributes between probe and fetch.
type fakeSys struct {
	mu     sync.Mutex
	names  []string
	values map[string][]byte

	beforeFetch func(f *fakeSys, fetch int)

	probes  int
	fetches int
}

func newFakeSys() *fakeSys {
	return &fakeSys{values: make(map[string][]byte)}
}

// put sets an attribute, keeping the order of first insertion. It must be
// called with f.mu held or before the fake is used.
func (f *fakeSys) put(name string, value []byte) {
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

func (f *fakeSys) list() []byte {
	var buf []byte
	for _, name := range f.names {
		buf = append(buf, name...)
		buf = append(buf, 0)
	}
	return buf
}

func (f *fakeSys) fetch(dest []byte, current func() ([]byte, error)) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(dest) == 0 {
		f.probes++
		v, err := current()
		return len(v), err
	}

	f.fetches++
	if f.beforeFetch != nil {
		f.beforeFetch(f, f.fetches)
	}

	v, err := current()
	if err != nil {
		return 0, err
	}
	if len(v) > len(dest) {
		return 0, syscall.ERANGE
	}
	return copy(dest, v), nil
}

func (f *fakeSys) getxattr(_, name nativeString, dest []byte, _ Flags) (int, error) {
	return f.fetch(dest, func() ([]byte, error) {
		v, ok := f.values[name.String()]
		if !ok {
			return nil, pkgxattr.ENOATTR
		}
		return v, nil
	})
}

func (f *fakeSys) listxattr(_ nativeString, dest []byte, _ Flags) (int, error) {
	return f.fetch(dest, func() ([]byte, error) {
		return f.list(), nil
	})
}

func (f *fakeSys) setxattr(_, name nativeString, value []byte, flags Flags) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.values[name.String()]
	switch {
	case flags&Create != 0 && ok:
		return syscall.EEXIST
	case flags&Replace != 0 && !ok:
		return pkgxattr.ENOATTR
	}

	f.put(name.String(), append([]byte{}, value...))
	return nil
}

func (f *fakeSys) removexattr(_, name nativeString, _ Flags) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := name.String()
	if n == "" {
		return syscall.EINVAL
	}
	if _, ok := f.values[n]; !ok {
		return pkgxattr.ENOATTR
	}

	delete(f.values, n)
	for i, s := range f.names {
		if s == n {
			f.names = append(f.names[:i], f.names[i+1:]...)
			break
		}
	}
	return nil
}
