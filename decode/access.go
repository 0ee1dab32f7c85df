package decode

import (
	"unicode/utf8"

	"github.com/yamel-format/yamel/errs"
	"github.com/yamel-format/yamel/event"
)

// SeqAccess yields one sequence element per call. Elements share the
// parent's position counter; each gets its own indexed path segment.
type SeqAccess struct {
	de  *Decoder
	len int
}

// Element decodes the next element through f, or returns ok=false at the
// end of the sequence (the end event itself is not consumed).
func (a *SeqAccess) Element(f func(*Decoder) error) (bool, error) {
	ev, _, err := a.de.peek()
	if err != nil {
		return false, err
	}
	if ev.Kind == event.KindSequenceEnd {
		return false, nil
	}
	child := a.de.child(a.de.path.seq(a.len))
	a.len++
	return true, f(child)
}

// MapAccess yields one mapping entry per call, key then value. A scalar
// key's text becomes the value's path segment; non-scalar keys leave the
// value structurally valid but unnamed in diagnostics.
type MapAccess struct {
	de  *Decoder
	len int
	key []byte
}

// Key decodes the next entry's key through f, or returns ok=false at the
// end of the mapping.
func (a *MapAccess) Key(f func(*Decoder) error) (bool, error) {
	ev, _, err := a.de.peek()
	if err != nil {
		return false, err
	}
	switch ev.Kind {
	case event.KindMappingEnd:
		return false, nil
	case event.KindScalar:
		a.key = ev.Scalar.Value
	default:
		a.key = nil
	}
	a.len++
	return true, f(a.de)
}

// Value decodes the entry's value through f.
func (a *MapAccess) Value(f func(*Decoder) error) error {
	var p *Path
	if a.key != nil && utf8.Valid(a.key) {
		p = a.de.path.mapKey(string(a.key))
	} else {
		p = a.de.path.unknown()
	}
	return f(a.de.child(p))
}

func ignored(d *Decoder) error {
	return d.Ignored()
}

// endSequence drains whatever the visitor left unread, consumes the end
// event, and reports the true length when a fixed-arity caller consumed a
// different number of elements.
func (d *Decoder) endSequence(consumed int) error {
	seq := &SeqAccess{de: d, len: consumed}
	for {
		ok, err := seq.Element(ignored)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	ev, _, err := d.next()
	if err != nil {
		return err
	}
	if ev.Kind != event.KindSequenceEnd {
		panic("yamel: expected a sequence end event")
	}
	if seq.len == consumed {
		return nil
	}
	if consumed == 1 {
		return errs.Message("invalid length %d, expected sequence of 1 element", seq.len)
	}
	return errs.Message("invalid length %d, expected sequence of %d elements", seq.len, consumed)
}

func (d *Decoder) endMapping(consumed int) error {
	m := &MapAccess{de: d, len: consumed}
	for {
		ok, err := m.Key(ignored)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := m.Value(ignored); err != nil {
			return err
		}
	}
	ev, _, err := d.next()
	if err != nil {
		return err
	}
	if ev.Kind != event.KindMappingEnd {
		panic("yamel: expected a mapping end event")
	}
	if m.len == consumed {
		return nil
	}
	if consumed == 1 {
		return errs.Message("invalid length %d, expected map containing 1 entry", m.len)
	}
	return errs.Message("invalid length %d, expected map containing %d entries", m.len, consumed)
}
