package xattr

import (
	"github.com/xattrkit/xattrkit/internal/debug"
)

// Attribute is a single name and value pair.
type Attribute struct {
	Name  string
	Value []byte
}

// Dump reads all attributes of path. An attribute removed between listing
// and reading is skipped.
func (h *Handle) Dump(path string, flags Flags) ([]Attribute, error) {
	names, err := h.List(path, flags)
	debug.Log("Dump(%v) %v %v", path, names, err)
	if err != nil {
		return nil, err
	}

	attrs := make([]Attribute, 0, len(names))
	for _, name := range names {
		value, err := h.Get(path, name, flags)
		if IsNotFound(err) {
			debug.Log("attribute %v of %v vanished, skipping", name, path)
			continue
		}
		if err != nil {
			return nil, err
		}

		attrs = append(attrs, Attribute{Name: name, Value: value})
	}

	return attrs, nil
}

// Restore makes the attributes of path selected by filter equal to attrs:
// each selected attribute is set, and selected attributes present on path
// but not in attrs are removed. A nil filter selects everything.
func (h *Handle) Restore(path string, attrs []Attribute, flags Flags, filter func(name string) bool) error {
	if filter == nil {
		filter = func(string) bool { return true }
	}

	expected := make(map[string]struct{}, len(attrs))
	for _, attr := range attrs {
		if !filter(attr.Name) {
			continue
		}

		if err := h.Set(path, attr.Name, attr.Value, flags); err != nil {
			return err
		}
		expected[attr.Name] = struct{}{}
	}

	names, err := h.List(path, flags)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, ok := expected[name]; ok {
			continue
		}
		if !filter(name) {
			continue
		}

		if err := h.Remove(path, name, flags, true); err != nil {
			return err
		}
	}

	return nil
}

// Copy replaces the attributes of dst selected by filter with those of src.
func (h *Handle) Copy(src, dst string, flags Flags, filter func(name string) bool) error {
	attrs, err := h.Dump(src, flags)
	if err != nil {
		return err
	}

	return h.Restore(dst, attrs, flags&^(Create|Replace), filter)
}

// Dump calls Dump on the package level handle.
func Dump(path string, flags Flags) ([]Attribute, error) {
	return Default().Dump(path, flags)
}

// Restore calls Restore on the package level handle.
func Restore(path string, attrs []Attribute, flags Flags, filter func(name string) bool) error {
	return Default().Restore(path, attrs, flags, filter)
}

// Copy calls Copy on the package level handle.
func Copy(src, dst string, flags Flags, filter func(name string) bool) error {
	return Default().Copy(src, dst, flags, filter)
}
