package decode

import (
	"math/big"
	"strings"

	"github.com/yamel-format/yamel/errs"
)

// Visitor receives the one value a decoder operation produces. The decoder
// calls exactly one Visit method per value; the visitor keeps whatever it
// builds. Embed Base to get "invalid type" errors for every shape the
// visitor does not accept.
type Visitor interface {
	// Expecting describes what the visitor accepts, for mismatch errors:
	// "a boolean", "int16", "a sequence of strings".
	Expecting() string

	VisitBool(v bool) error
	VisitInt(v int64) error
	VisitUint(v uint64) error
	// VisitBigInt receives integers outside both int64 and uint64 range.
	VisitBigInt(v *big.Int) error
	VisitFloat(v float64) error
	VisitString(v string) error
	VisitNull() error
	// VisitSome receives the decoder positioned on a present optional
	// value; the visitor decodes it with the shape it wants.
	VisitSome(d *Decoder) error
	VisitSeq(a *SeqAccess) error
	VisitMap(a *MapAccess) error
	// VisitVariant receives a resolved enum variant and access to its
	// payload. Exactly one of va.Unit or va.Payload must be used.
	VisitVariant(name string, va *Variant) error
}

// Base implements Visitor with an invalid-type error for every shape,
// phrased against Expect.
type Base struct {
	Expect string
}

func (b Base) Expecting() string { return b.Expect }

func (b Base) VisitBool(v bool) error {
	return errs.Message("invalid type: boolean `%t`, expected %s", v, b.Expect)
}

func (b Base) VisitInt(v int64) error {
	return errs.Message("invalid type: integer `%d`, expected %s", v, b.Expect)
}

func (b Base) VisitUint(v uint64) error {
	return errs.Message("invalid type: integer `%d`, expected %s", v, b.Expect)
}

func (b Base) VisitBigInt(v *big.Int) error {
	return errs.Message("invalid type: integer `%s`, expected %s", v, b.Expect)
}

func (b Base) VisitFloat(v float64) error {
	return errs.Message("invalid type: floating point `%v`, expected %s", v, b.Expect)
}

func (b Base) VisitString(v string) error {
	return errs.Message("invalid type: string %q, expected %s", v, b.Expect)
}

func (b Base) VisitNull() error {
	return errs.Message("invalid type: unit value, expected %s", b.Expect)
}

func (b Base) VisitSome(*Decoder) error {
	return errs.Message("invalid type: optional value, expected %s", b.Expect)
}

func (b Base) VisitSeq(*SeqAccess) error {
	return errs.Message("invalid type: sequence, expected %s", b.Expect)
}

func (b Base) VisitMap(*MapAccess) error {
	return errs.Message("invalid type: map, expected %s", b.Expect)
}

func (b Base) VisitVariant(string, *Variant) error {
	return errs.Message("invalid type: enum, expected %s", b.Expect)
}

// oneOf lists the permitted variant names the way mismatch errors quote
// them.
func oneOf(names []string) string {
	switch len(names) {
	case 0:
		return "there are no variants"
	case 1:
		return "`" + names[0] + "`"
	}
	var sb strings.Builder
	sb.WriteString("one of ")
	for i, n := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("`" + n + "`")
	}
	return sb.String()
}
