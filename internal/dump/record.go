package dump

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

// ErrHashMismatch is returned by Verify if a value does not match its hash.
var ErrHashMismatch = errors.New("hash mismatch")

// Record holds the attributes of one path. In JSON, a Path that is not valid
// UTF-8 is base64 encoded.
type Record struct {
	Path  string
	Dir   bool
	Attrs []Attr
}

// Attr is an attribute as stored in an archive. In JSON, Value is base64
// encoded, and so is a Name that is not valid UTF-8.
type Attr struct {
	Name  string
	Value []byte
	Hash  string
}

// Hash returns the hex encoded xxhash64 of value.
func Hash(value []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(value))
}

// NewRecord converts attributes read from path into a Record.
func NewRecord(path string, attrs []xattr.Attribute) Record {
	rec := Record{Path: path, Attrs: make([]Attr, 0, len(attrs))}
	for _, a := range attrs {
		rec.Attrs = append(rec.Attrs, Attr{Name: a.Name, Value: a.Value, Hash: Hash(a.Value)})
	}
	return rec
}

// Attributes returns the attributes of rec. A nil value, as produced by an
// empty JSON value, is returned as an empty one.
func (rec Record) Attributes() []xattr.Attribute {
	attrs := make([]xattr.Attribute, 0, len(rec.Attrs))
	for _, a := range rec.Attrs {
		value := a.Value
		if value == nil {
			value = []byte{}
		}
		attrs = append(attrs, xattr.Attribute{Name: a.Name, Value: value})
	}
	return attrs
}

// Verify checks the value of every attribute against its hash.
func (rec Record) Verify() error {
	for _, a := range rec.Attrs {
		if err := a.Verify(a.Value); err != nil {
			return errors.Wrap(err, rec.Path)
		}
	}
	return nil
}

// Verify checks value against the hash of a.
func (a Attr) Verify(value []byte) error {
	if h := Hash(value); h != a.Hash {
		return errors.Wrapf(ErrHashMismatch, "attribute %v: want %v, got %v", a.Name, a.Hash, h)
	}
	return nil
}
