// Package decode walks a loaded document's event arena against a
// caller-chosen shape. The caller picks the operation (Bool, Str, Seq,
// Enum, ...) and supplies a Visitor; the decoder resolves aliases, types
// scalars under the YAML 1.2 core schema, bounds nesting depth, and stamps
// errors with the innermost position and path.
package decode

import (
	"strings"
	"unicode/utf8"

	"github.com/yamel-format/yamel/errs"
	"github.com/yamel-format/yamel/event"
	"github.com/yamel-format/yamel/load"
)

// DefaultMaxDepth is the recursion budget: the bound on container nesting,
// restored on exit so deep neighbors do not penalize siblings.
const DefaultMaxDepth = 128

type Option func(*Decoder)

// MaxDepth overrides the recursion budget.
func MaxDepth(n int) Option {
	return func(d *Decoder) { d.depth = n }
}

// Decoder is a cursor over one document: a shared position counter, a path
// for diagnostics, and the remaining recursion budget. Child cursors share
// the parent's position; alias jumps get their own, seeded at the anchor
// target. The document itself is never mutated.
type Decoder struct {
	doc   *load.Document
	pos   *int
	path  *Path
	depth int
}

func NewDecoder(doc *load.Document, opts ...Option) *Decoder {
	pos := 0
	d := &Decoder{doc: doc, pos: &pos, path: rootPath, depth: DefaultMaxDepth}
	for _, o := range opts {
		o(d)
	}
	return d
}

// endError is what consuming past the buffered events means: the document's
// deferred load error if it has one, end of stream otherwise.
func (d *Decoder) endError() error {
	if d.doc.Err != nil {
		return errs.Shared(d.doc.Err)
	}
	return errs.EndOfStream()
}

func (d *Decoder) peek() (*event.Event, event.Mark, error) {
	if *d.pos >= len(d.doc.Events) {
		return nil, event.Mark{}, d.endError()
	}
	return &d.doc.Events[*d.pos], d.doc.Marks[*d.pos], nil
}

func (d *Decoder) next() (*event.Event, event.Mark, error) {
	ev, mark, err := d.peek()
	if err == nil {
		*d.pos++
	}
	return ev, mark, err
}

// jump follows a resolved alias: a fresh cursor at the anchor target with
// its own position counter. The recursion budget carries over, which is
// what bounds self-referential documents.
func (d *Decoder) jump(target int) *Decoder {
	if target < 0 || target >= len(d.doc.Events) {
		panic("yamel: alias event with unresolved target")
	}
	pos := target
	return &Decoder{doc: d.doc, pos: &pos, path: d.path.alias(), depth: d.depth}
}

func (d *Decoder) child(path *Path) *Decoder {
	return &Decoder{doc: d.doc, pos: d.pos, path: path, depth: d.depth}
}

// recursionCheck spends one unit of depth around f, raising the limit error
// at the container's opening mark before any shape logic runs.
func (d *Decoder) recursionCheck(mark event.Mark, f func(*Decoder) error) error {
	previous := d.depth
	if previous == 0 {
		return errs.RecursionLimitExceeded(mark)
	}
	d.depth = previous - 1
	err := f(d)
	d.depth = previous
	return err
}

func (d *Decoder) fix(err error, mark event.Mark) error {
	if err == nil {
		return nil
	}
	return errs.FixMark(err, mark, d.path)
}

// invalidType builds the mismatch error for an event that cannot satisfy v.
// Scalars are probed through the full typing rules so the message names the
// resolved type and value.
func invalidType(ev *event.Event, v Visitor) error {
	switch ev.Kind {
	case event.KindScalar:
		if err := visitScalar(Base{Expect: v.Expecting()}, ev.Scalar); err != nil {
			return err
		}
		panic("yamel: scalar type probe succeeded")
	case event.KindSequenceStart:
		return errs.Message("invalid type: sequence, expected %s", v.Expecting())
	case event.KindMappingStart:
		return errs.Message("invalid type: map, expected %s", v.Expecting())
	case event.KindSequenceEnd:
		panic("yamel: unexpected end of sequence")
	case event.KindMappingEnd:
		panic("yamel: unexpected end of mapping")
	}
	panic("yamel: unexpected alias event")
}

// Any lets the document pick the shape: scalars resolve under the core
// schema, containers drive VisitSeq/VisitMap.
func (d *Decoder) Any(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	switch ev.Kind {
	case event.KindAlias:
		return d.jump(ev.Alias).Any(v)
	case event.KindScalar:
		return d.fix(visitScalar(v, ev.Scalar), mark)
	case event.KindSequenceStart:
		return d.fix(d.visitSequence(v, mark), mark)
	case event.KindMappingStart:
		return d.fix(d.visitMapping(v, mark), mark)
	}
	panic("yamel: unexpected end event")
}

// scalarOp runs the typing rules against whatever scalar sits next; used by
// Unit and as the common tail of the scalar shapes.
func (d *Decoder) scalarOp(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	switch ev.Kind {
	case event.KindAlias:
		return d.jump(ev.Alias).scalarOp(v)
	case event.KindScalar:
		return d.fix(visitScalar(v, ev.Scalar), mark)
	}
	return d.fix(invalidType(ev, v), mark)
}

func (d *Decoder) Bool(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	if ev.Kind == event.KindAlias {
		return d.jump(ev.Alias).Bool(v)
	}
	if ev.Kind == event.KindScalar && ev.Scalar.Style == event.Plain && utf8.Valid(ev.Scalar.Value) {
		if b, ok := parseBool(string(ev.Scalar.Value)); ok {
			return d.fix(v.VisitBool(b), mark)
		}
	}
	return d.fix(invalidType(ev, v), mark)
}

// Int decodes a signed 64-bit integer; the visitor range-checks narrower
// widths.
func (d *Decoder) Int(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	if ev.Kind == event.KindAlias {
		return d.jump(ev.Alias).Int(v)
	}
	if ev.Kind == event.KindScalar && ev.Scalar.Style == event.Plain && utf8.Valid(ev.Scalar.Value) {
		if i, ok := parseSignedInt(string(ev.Scalar.Value), int64FromRadix); ok {
			return d.fix(v.VisitInt(i), mark)
		}
	}
	return d.fix(invalidType(ev, v), mark)
}

func (d *Decoder) Uint(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	if ev.Kind == event.KindAlias {
		return d.jump(ev.Alias).Uint(v)
	}
	if ev.Kind == event.KindScalar && ev.Scalar.Style == event.Plain && utf8.Valid(ev.Scalar.Value) {
		if u, ok := parseUnsignedInt(string(ev.Scalar.Value), uint64FromRadix); ok {
			return d.fix(v.VisitUint(u), mark)
		}
	}
	return d.fix(invalidType(ev, v), mark)
}

// BigInt decodes through the beyond-64-bit lane.
func (d *Decoder) BigInt(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	if ev.Kind == event.KindAlias {
		return d.jump(ev.Alias).BigInt(v)
	}
	if ev.Kind == event.KindScalar && ev.Scalar.Style == event.Plain && utf8.Valid(ev.Scalar.Value) {
		if b, ok := parseSignedInt(string(ev.Scalar.Value), bigIntFromRadix); ok {
			return d.fix(v.VisitBigInt(b), mark)
		}
	}
	return d.fix(invalidType(ev, v), mark)
}

func (d *Decoder) Float(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	if ev.Kind == event.KindAlias {
		return d.jump(ev.Alias).Float(v)
	}
	if ev.Kind == event.KindScalar && ev.Scalar.Style == event.Plain && utf8.Valid(ev.Scalar.Value) {
		if f, ok := parseFloat64(string(ev.Scalar.Value)); ok {
			return d.fix(v.VisitFloat(f), mark)
		}
	}
	return d.fix(invalidType(ev, v), mark)
}

// Str decodes any scalar as its text, bypassing automatic typing: the
// caller asked for a string, so "007" stays "007".
func (d *Decoder) Str(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	switch ev.Kind {
	case event.KindAlias:
		return d.jump(ev.Alias).Str(v)
	case event.KindScalar:
		if utf8.Valid(ev.Scalar.Value) {
			return d.fix(v.VisitString(materializeString(string(ev.Scalar.Value), ev.Scalar)), mark)
		}
	}
	return d.fix(invalidType(ev, v), mark)
}

// Bytes is served through Any: YAML has no native binary shape here, so the
// document picks.
func (d *Decoder) Bytes(v Visitor) error {
	return d.Any(v)
}

// Identifier decodes struct field and variant names; they are strings.
func (d *Decoder) Identifier(v Visitor) error {
	return d.Str(v)
}

// Option decodes null (or an empty plain scalar) as VisitNull and anything
// else as VisitSome without consuming it. Quoting or a non-null tag forces
// presence, so `""` is a present empty string.
func (d *Decoder) Option(v Visitor) error {
	ev, _, err := d.peek()
	if err != nil {
		return err
	}
	var some bool
	switch ev.Kind {
	case event.KindAlias:
		*d.pos++
		return d.jump(ev.Alias).Option(v)
	case event.KindScalar:
		s := ev.Scalar
		switch {
		case s.Style != event.Plain:
			some = true
		case s.Tag == "!!null":
			if !parseNull(string(s.Value)) {
				return errs.Message("invalid value: string %q, expected null", s.Value)
			}
		case s.Tag != "":
			some = true
		default:
			some = len(s.Value) > 0 && !parseNull(string(s.Value))
		}
	case event.KindSequenceStart, event.KindMappingStart:
		some = true
	default:
		panic("yamel: unexpected end event")
	}
	if some {
		return v.VisitSome(d)
	}
	*d.pos++
	return v.VisitNull()
}

// Unit accepts only null.
func (d *Decoder) Unit(v Visitor) error {
	return d.scalarOp(v)
}

// Newtype is transparent: the wrapper decodes as its content.
func (d *Decoder) Newtype(f func(*Decoder) error) error {
	return f(d)
}

func (d *Decoder) Seq(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	switch ev.Kind {
	case event.KindAlias:
		return d.jump(ev.Alias).Seq(v)
	case event.KindSequenceStart:
		return d.fix(d.visitSequence(v, mark), mark)
	}
	return d.fix(invalidType(ev, v), mark)
}

// Tuple decodes a fixed-arity sequence. The visitor stops requesting
// elements at its arity; the decoder counts whatever remains and reports
// the true length on disagreement.
func (d *Decoder) Tuple(n int, v Visitor) error {
	_ = n
	return d.Seq(v)
}

func (d *Decoder) Map(v Visitor) error {
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	switch ev.Kind {
	case event.KindAlias:
		return d.jump(ev.Alias).Map(v)
	case event.KindMappingStart:
		return d.fix(d.visitMapping(v, mark), mark)
	}
	return d.fix(invalidType(ev, v), mark)
}

// Struct decodes a named fieldful shape; a sequence is also accepted, with
// fields taken positionally.
func (d *Decoder) Struct(name string, fields []string, v Visitor) error {
	_, _ = name, fields
	ev, mark, err := d.next()
	if err != nil {
		return err
	}
	switch ev.Kind {
	case event.KindAlias:
		return d.jump(ev.Alias).Struct(name, fields, v)
	case event.KindSequenceStart:
		return d.fix(d.visitSequence(v, mark), mark)
	case event.KindMappingStart:
		return d.fix(d.visitMapping(v, mark), mark)
	}
	return d.fix(invalidType(ev, v), mark)
}

// Enum resolves a tagged union: a scalar with a matching local tag, a bare
// scalar naming a unit variant, or a singleton map of variant name to
// payload.
func (d *Decoder) Enum(name string, variants []string, v Visitor) error {
	ev, mark, err := d.peek()
	if err != nil {
		return err
	}
	switch ev.Kind {
	case event.KindAlias:
		*d.pos++
		return d.jump(ev.Alias).Enum(name, variants, v)
	case event.KindScalar:
		if tag, ok := strings.CutPrefix(ev.Scalar.Tag, "!"); ok && !strings.HasPrefix(tag, "!") {
			for _, variant := range variants {
				if variant == tag {
					return v.VisitVariant(variant, &Variant{de: d.child(d.path.mapKey(variant))})
				}
			}
		}
		nv := &variantName{enum: name, variants: variants}
		if err := d.Str(nv); err != nil {
			return err
		}
		return v.VisitVariant(nv.name, &Variant{unit: true})
	case event.KindMappingStart:
		*d.pos++
		variant, err := d.enumKey(name)
		if err != nil {
			return err
		}
		if err := v.VisitVariant(variant, &Variant{de: d.child(d.path.mapKey(variant))}); err != nil {
			return err
		}
		return d.endMapping(1)
	case event.KindSequenceStart:
		return d.fix(errs.Message("invalid type: sequence, expected string or singleton map"), mark)
	}
	panic("yamel: unexpected end event")
}

// enumKey consumes the variant-naming key of a map-shaped enum.
func (d *Decoder) enumKey(name string) (string, error) {
	ev, _, err := d.next()
	if err != nil {
		return "", err
	}
	switch ev.Kind {
	case event.KindScalar:
		if utf8.Valid(ev.Scalar.Value) {
			return string(ev.Scalar.Value), nil
		}
	case event.KindMappingEnd:
		return "", errs.Message("invalid type: map, expected variant of enum `%s`", name)
	case event.KindSequenceEnd:
		return "", errs.Message("invalid type: sequence, expected variant of enum `%s`", name)
	}
	// a container key; let the probe describe it with position and path
	*d.pos--
	if err := d.Any(Base{Expect: "variant of enum `" + name + "`"}); err != nil {
		return "", err
	}
	panic("yamel: enum key probe succeeded")
}

// variantName validates a bare scalar against the declared variants.
type variantName struct {
	Base
	enum     string
	variants []string
	name     string
}

func (v *variantName) Expecting() string {
	return "variant of enum `" + v.enum + "`"
}

func (v *variantName) VisitString(s string) error {
	for _, variant := range v.variants {
		if variant == s {
			v.name = variant
			return nil
		}
	}
	return errs.Message("unknown variant `%s`, expected %s", s, oneOf(v.variants))
}

// Variant is the payload side of a resolved enum variant.
type Variant struct {
	de   *Decoder
	unit bool
}

// Unit asserts the variant carries no payload.
func (va *Variant) Unit() error {
	if va.unit {
		return nil
	}
	return va.de.Unit(unitVisitor{Base{Expect: "unit"}})
}

// Payload returns a decoder positioned on the variant's payload.
func (va *Variant) Payload() (*Decoder, error) {
	if va.unit {
		return nil, errs.Message("invalid type: unit variant, expected newtype variant")
	}
	return va.de, nil
}

type unitVisitor struct{ Base }

func (unitVisitor) VisitNull() error { return nil }

// Ignored skips one value without materializing it: a depth-tracked walk
// over the raw events. Aliases are skipped, not followed.
func (d *Decoder) Ignored() error {
	var stack []event.Kind
	for {
		ev, _, err := d.next()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case event.KindAlias, event.KindScalar:
		case event.KindSequenceStart, event.KindMappingStart:
			stack = append(stack, ev.Kind)
		case event.KindSequenceEnd:
			if len(stack) == 0 || stack[len(stack)-1] != event.KindSequenceStart {
				panic("yamel: unexpected end of sequence")
			}
			stack = stack[:len(stack)-1]
		case event.KindMappingEnd:
			if len(stack) == 0 || stack[len(stack)-1] != event.KindMappingStart {
				panic("yamel: unexpected end of mapping")
			}
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			return nil
		}
	}
}

func (d *Decoder) visitSequence(v Visitor, mark event.Mark) error {
	var consumed int
	err := d.recursionCheck(mark, func(d *Decoder) error {
		seq := &SeqAccess{de: d}
		err := v.VisitSeq(seq)
		consumed = seq.len
		return err
	})
	if err != nil {
		return err
	}
	return d.endSequence(consumed)
}

func (d *Decoder) visitMapping(v Visitor, mark event.Mark) error {
	var consumed int
	err := d.recursionCheck(mark, func(d *Decoder) error {
		m := &MapAccess{de: d}
		err := v.VisitMap(m)
		consumed = m.len
		return err
	})
	if err != nil {
		return err
	}
	return d.endMapping(consumed)
}
