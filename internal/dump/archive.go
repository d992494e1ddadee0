// Package dump reads and writes attribute archives. An archive holds one
// record per path with all attributes of that path. Two formats exist:
// JSON lines, which keep attribute order and value hashes, and tar, where
// every path is an empty entry carrying its attributes as SCHILY.xattr PAX
// records, as written by GNU tar and bsdtar. Both can be compressed with
// zstd.
package dump

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/errors"
)

// Format selects the archive layout.
type Format string

const (
	FormatJSON Format = "jsonl"
	FormatTar  Format = "tar"
)

// ParseFormat checks s for a known format name. The empty string selects
// FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatTar:
		return FormatTar, nil
	default:
		return "", errors.Fatalf("unknown archive format %q", s)
	}
}

// FormatFromName guesses the format from a file name: names ending in .tar
// or .tar.zst are tar archives, everything else JSON lines.
func FormatFromName(filename string) Format {
	if strings.HasSuffix(strings.TrimSuffix(filename, ".zst"), ".tar") {
		return FormatTar
	}
	return FormatJSON
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ErrUnsupportedName is returned for an attribute name the archive format
// cannot store.
var ErrUnsupportedName = errors.New("name cannot be stored in this archive format")

type encoder interface {
	checkName(name string) error
	encode(rec Record) error
	close() error
}

type decoder interface {
	decode() (Record, error)
}

// Writer writes records to an archive.
type Writer struct {
	enc    encoder
	zw     *zstd.Encoder
	closer io.Closer
}

// NewWriter returns a Writer on w. With compress set, the archive is
// written as a single zstd stream.
func NewWriter(w io.Writer, format Format, compress bool) (*Writer, error) {
	wr := &Writer{}
	if compress {
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, errors.Wrap(err, "zstd.NewWriter")
		}
		wr.zw = zw
		w = zw
	}

	switch format {
	case FormatJSON, "":
		wr.enc = newJSONEncoder(w)
	case FormatTar:
		wr.enc = newTarEncoder(w)
	default:
		return nil, errors.Errorf("unknown archive format %q", format)
	}

	return wr, nil
}

// Create opens filename for writing. Archives whose name ends in ".zst" are
// compressed. An empty format is guessed with FormatFromName. The name "-"
// writes to standard output.
func Create(filename string, format Format) (*Writer, error) {
	if format == "" {
		format = FormatFromName(filename)
	}
	if filename == "-" {
		return NewWriter(os.Stdout, format, false)
	}

	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	w, err := NewWriter(f, format, strings.HasSuffix(filename, ".zst"))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// CheckName returns an error wrapping ErrUnsupportedName if the archive
// cannot store an attribute called name.
func (w *Writer) CheckName(name string) error {
	return w.enc.checkName(name)
}

// Write appends rec to the archive. A record with an attribute rejected by
// CheckName is not written and the archive stays usable.
func (w *Writer) Write(rec Record) error {
	for _, a := range rec.Attrs {
		if err := w.enc.checkName(a.Name); err != nil {
			return errors.Wrap(err, rec.Path)
		}
	}
	return w.enc.encode(rec)
}

// Close completes the archive and closes the underlying file, if the Writer
// opened it.
func (w *Writer) Close() error {
	err := w.enc.close()
	if w.zw != nil {
		if zerr := w.zw.Close(); err == nil {
			err = zerr
		}
	}
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.WithStack(err)
}

// Reader reads records from an archive.
type Reader struct {
	dec    decoder
	zr     *zstd.Decoder
	closer io.Closer
}

// tarMagicOffset is where the "ustar" magic sits in a tar header.
const tarMagicOffset = 257

// NewReader returns a Reader on r. Compression and format are detected
// from the data.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{}

	br := bufio.NewReader(r)
	magic, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, errors.WithStack(err)
	}

	if bytes.Equal(magic, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "zstd.NewReader")
		}
		rd.zr = zr
		br = bufio.NewReader(zr)
	}

	hdr, err := br.Peek(tarMagicOffset + 5)
	if err != nil && err != io.EOF {
		rd.release()
		return nil, errors.WithStack(err)
	}

	if len(hdr) == tarMagicOffset+5 && string(hdr[tarMagicOffset:]) == "ustar" {
		debug.Log("reading tar archive, compressed %v", rd.zr != nil)
		rd.dec = newTarDecoder(br)
	} else {
		debug.Log("reading JSON archive, compressed %v", rd.zr != nil)
		rd.dec = newJSONDecoder(br)
	}

	return rd, nil
}

// Open opens the archive filename, "-" reads standard input.
func Open(filename string) (*Reader, error) {
	if filename == "-" {
		return NewReader(os.Stdin)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Next returns the next record. At the end of the archive it returns io.EOF.
func (r *Reader) Next() (Record, error) {
	rec, err := r.dec.decode()
	if err != nil {
		return Record{}, err
	}
	if rec.Path == "" {
		return Record{}, errors.New("decode: record without path")
	}
	return rec, nil
}

func (r *Reader) release() {
	if r.zr != nil {
		r.zr.Close()
		r.zr = nil
	}
}

// Close releases the decoder and closes the underlying file, if the Reader
// opened it.
func (r *Reader) Close() error {
	r.release()
	if r.closer != nil {
		return errors.WithStack(r.closer.Close())
	}
	return nil
}
