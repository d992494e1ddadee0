package dump

import (
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/xattrkit/xattrkit/internal/errors"
)

// jsonRecord is the JSON form of Record.
type jsonRecord struct {
	Path    string `json:"path,omitempty"`
	RawPath []byte `json:"raw_path,omitempty"`
	Dir     bool   `json:"dir,omitempty"`
	Attrs   []Attr `json:"attrs"`
}

// MarshalJSON encodes rec, storing a path that is not valid UTF-8 as
// raw_path.
func (rec Record) MarshalJSON() ([]byte, error) {
	jr := jsonRecord{Path: rec.Path, Dir: rec.Dir, Attrs: rec.Attrs}
	if !utf8.ValidString(rec.Path) {
		jr.Path, jr.RawPath = "", []byte(rec.Path)
	}
	return json.Marshal(jr)
}

// UnmarshalJSON decodes rec, accepting either path or raw_path.
func (rec *Record) UnmarshalJSON(data []byte) error {
	var jr jsonRecord
	if err := json.Unmarshal(data, &jr); err != nil {
		return errors.Wrap(err, "Unmarshal")
	}

	path, err := pickName("path", jr.Path, jr.RawPath)
	if err != nil {
		return err
	}

	*rec = Record{Path: path, Dir: jr.Dir, Attrs: jr.Attrs}
	return nil
}

// pickName returns the raw form if one was stored. Exactly one form must be
// set.
func pickName(field, s string, raw []byte) (string, error) {
	switch {
	case raw != nil && s != "":
		return "", errors.Errorf("both %v and raw_%v set", field, field)
	case raw != nil:
		s = string(raw)
	}
	if s == "" {
		return "", errors.Errorf("%v missing", field)
	}
	return s, nil
}

// jsonAttr is the JSON form of Attr. encoding/json replaces invalid UTF-8
// in strings, so such names are kept as bytes in RawName.
type jsonAttr struct {
	Name    string `json:"name,omitempty"`
	RawName []byte `json:"raw_name,omitempty"`
	Value   []byte `json:"value"`
	Hash    string `json:"hash"`
}

// MarshalJSON encodes a, storing a name that is not valid UTF-8 as raw_name.
func (a Attr) MarshalJSON() ([]byte, error) {
	ja := jsonAttr{Name: a.Name, Value: a.Value, Hash: a.Hash}
	if !utf8.ValidString(a.Name) {
		ja.Name, ja.RawName = "", []byte(a.Name)
	}
	return json.Marshal(ja)
}

// UnmarshalJSON decodes a, accepting either name or raw_name.
func (a *Attr) UnmarshalJSON(data []byte) error {
	var ja jsonAttr
	if err := json.Unmarshal(data, &ja); err != nil {
		return errors.Wrap(err, "Unmarshal")
	}

	name, err := pickName("name", ja.Name, ja.RawName)
	if err != nil {
		return err
	}

	*a = Attr{Name: name, Value: ja.Value, Hash: ja.Hash}
	return nil
}

type jsonEncoder struct {
	enc *json.Encoder
}

func newJSONEncoder(w io.Writer) *jsonEncoder {
	return &jsonEncoder{enc: json.NewEncoder(w)}
}

func (e *jsonEncoder) encode(rec Record) error {
	return errors.Wrap(e.enc.Encode(rec), "encode")
}

func (e *jsonEncoder) checkName(string) error { return nil }

func (e *jsonEncoder) close() error { return nil }

type jsonDecoder struct {
	dec *json.Decoder
}

func newJSONDecoder(r io.Reader) *jsonDecoder {
	return &jsonDecoder{dec: json.NewDecoder(r)}
}

func (d *jsonDecoder) decode() (Record, error) {
	var rec Record
	err := d.dec.Decode(&rec)
	if err == io.EOF {
		return Record{}, io.EOF
	}
	if err != nil {
		return Record{}, errors.Wrap(err, "decode")
	}
	return rec, nil
}
