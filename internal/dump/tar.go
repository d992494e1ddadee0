package dump

import (
	"archive/tar"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/xattrkit/xattrkit/internal/debug"
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/xattr"
)

const (
	paxXattrPrefix = "SCHILY.xattr."
	paxACLAccess   = "SCHILY.acl.access"
	paxACLDefault  = "SCHILY.acl.default"
)

type tarEncoder struct {
	w *tar.Writer
}

func newTarEncoder(w io.Writer) *tarEncoder {
	return &tarEncoder{w: tar.NewWriter(w)}
}

// checkName rejects names containing '=', which ends the key of a PAX
// record.
func (e *tarEncoder) checkName(name string) error {
	if strings.Contains(name, "=") {
		return errors.Wrapf(ErrUnsupportedName, "attribute %q in tar", name)
	}
	return nil
}

func (e *tarEncoder) encode(rec Record) error {
	header := &tar.Header{
		Name:       path.Clean(rec.Path),
		Typeflag:   tar.TypeReg,
		Mode:       0o644,
		Format:     tar.FormatPAX,
		PAXRecords: paxRecords(rec.Attrs),
	}
	if rec.Dir {
		header.Typeflag = tar.TypeDir
		header.Mode = 0o755
		if !strings.HasSuffix(header.Name, "/") {
			header.Name += "/"
		}
	}

	if err := e.w.WriteHeader(header); err != nil {
		return errors.Wrapf(err, "tar header for %v", rec.Path)
	}
	return nil
}

func (e *tarEncoder) close() error {
	return e.w.Close()
}

// paxRecords stores every attribute as a SCHILY.xattr record. POSIX ACLs are
// additionally written in text form for tools that only read SCHILY.acl.
func paxRecords(attrs []Attr) map[string]string {
	records := make(map[string]string, len(attrs))

	for _, attr := range attrs {
		records[paxXattrPrefix+attr.Name] = string(attr.Value)

		var key string
		switch attr.Name {
		case "system.posix_acl_access":
			key = paxACLAccess
		case "system.posix_acl_default":
			key = paxACLDefault
		default:
			continue
		}

		text, err := formatLinuxACL(attr.Value)
		if err != nil {
			debug.Log("cannot format %v: %v", attr.Name, err)
			continue
		}
		records[key] = text
	}

	return records
}

type tarDecoder struct {
	r *tar.Reader
}

func newTarDecoder(r io.Reader) *tarDecoder {
	return &tarDecoder{r: tar.NewReader(r)}
}

// decode returns the attributes of the next entry, sorted by name since PAX
// records are unordered.
func (d *tarDecoder) decode() (Record, error) {
	hdr, err := d.r.Next()
	if err == io.EOF {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, errors.Wrap(err, "tar")
	}

	name := hdr.Name
	if hdr.Typeflag == tar.TypeDir && name != "/" {
		name = strings.TrimSuffix(name, "/")
	}

	var attrs []xattr.Attribute
	for key, value := range hdr.PAXRecords {
		attrName, ok := strings.CutPrefix(key, paxXattrPrefix)
		if !ok {
			continue
		}
		attrs = append(attrs, xattr.Attribute{Name: attrName, Value: []byte(value)})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })

	rec := NewRecord(name, attrs)
	rec.Dir = hdr.Typeflag == tar.TypeDir
	return rec, nil
}
