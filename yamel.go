// Package yamel deserializes YAML documents into Go values with exact
// source positions in every error. The reflection front-end in this package
// sits on the shape-directed engine in decode; callers needing enums,
// custom visitors, or span capture can use the engine directly.
package yamel

import (
	"io"

	"github.com/yamel-format/yamel/decode"
	"github.com/yamel-format/yamel/errs"
	"github.com/yamel-format/yamel/load"
)

// Unmarshal decodes a single YAML document into v, which must be a non-nil
// pointer. A stream holding more than one document is rejected.
func Unmarshal(data []byte, v any) error {
	l := load.New(data)
	doc := l.NextDocument()
	if doc == nil {
		return errs.EndOfStream()
	}
	if err := bindValue(decode.NewDecoder(doc), v, false); err != nil {
		return err
	}
	if l.NextDocument() != nil {
		return errs.MoreThanOneDocument()
	}
	return nil
}

func UnmarshalString(s string, v any) error {
	return Unmarshal([]byte(s), v)
}

// Decoder reads a stream of YAML documents, one Decode call each. A failed
// document does not invalidate documents already returned, and a fatal
// source error repeats identically on every later call.
type Decoder struct {
	loader *load.Loader
	known  bool
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{loader: load.FromReader(r)}
}

// KnownFields makes Decode reject mapping keys that do not correspond to a
// struct field of the target. Off by default: unknown keys are skipped.
func (d *Decoder) KnownFields(enable bool) {
	d.known = enable
}

// Decode reads the next document into v, or returns io.EOF when the stream
// is exhausted.
func (d *Decoder) Decode(v any) error {
	doc := d.loader.NextDocument()
	if doc == nil {
		return io.EOF
	}
	return bindValue(decode.NewDecoder(doc), v, d.known)
}
