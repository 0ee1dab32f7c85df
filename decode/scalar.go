package decode

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
	"unsafe"

	"github.com/yamel-format/yamel/errs"
	"github.com/yamel-format/yamel/event"
)

// Scalar typing for the YAML 1.2 core schema. The grammars are ordered, pure
// predicates over the decoded text; the caller commits to the first one that
// accepts.

func parseNull(s string) bool {
	return s == "~" || s == "null"
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// digitsButNotNumber reports a decimal with a leading zero followed only by
// digits: a string under YAML 1.2, kept out of the number grammars to avoid
// octal-like ambiguity.
func digitsButNotNumber(s string) bool {
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func hasSign(s string) bool {
	return strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")
}

// parseUnsignedInt accepts an optional leading '+', a 0x/0o/0b radix prefix
// with no sign after it, or plain decimal.
func parseUnsignedInt[T any](scalar string, fromRadix func(string, int) (T, bool)) (T, bool) {
	var zero T
	unpositive := strings.TrimPrefix(scalar, "+")
	for _, p := range radixPrefixes {
		if rest, ok := strings.CutPrefix(unpositive, p.prefix); ok {
			if hasSign(rest) {
				return zero, false
			}
			if v, ok := fromRadix(rest, p.radix); ok {
				return v, true
			}
		}
	}
	if hasSign(unpositive) {
		return zero, false
	}
	if digitsButNotNumber(scalar) {
		return zero, false
	}
	return fromRadix(unpositive, 10)
}

// parseSignedInt additionally accepts negative radix-prefixed forms by
// re-attaching the sign after stripping the prefix.
func parseSignedInt[T any](scalar string, fromRadix func(string, int) (T, bool)) (T, bool) {
	var zero T
	unpositive := scalar
	if rest, ok := strings.CutPrefix(scalar, "+"); ok {
		if hasSign(rest) {
			return zero, false
		}
		unpositive = rest
	}
	for _, p := range radixPrefixes {
		if rest, ok := strings.CutPrefix(unpositive, p.prefix); ok {
			if hasSign(rest) {
				return zero, false
			}
			if v, ok := fromRadix(rest, p.radix); ok {
				return v, true
			}
		}
		if rest, ok := strings.CutPrefix(scalar, "-"+p.prefix); ok {
			if v, ok := fromRadix("-"+rest, p.radix); ok {
				return v, true
			}
		}
	}
	if digitsButNotNumber(scalar) {
		return zero, false
	}
	return fromRadix(unpositive, 10)
}

// parseNegativeInt tries only the negative forms plus plain decimal; the
// unsigned grammar has already claimed everything non-negative.
func parseNegativeInt[T any](scalar string, fromRadix func(string, int) (T, bool)) (T, bool) {
	var zero T
	for _, p := range radixPrefixes {
		if rest, ok := strings.CutPrefix(scalar, "-"+p.prefix); ok {
			if v, ok := fromRadix("-"+rest, p.radix); ok {
				return v, true
			}
		}
	}
	if digitsButNotNumber(scalar) {
		return zero, false
	}
	return fromRadix(scalar, 10)
}

var radixPrefixes = []struct {
	prefix string
	radix  int
}{
	{"0x", 16},
	{"0o", 8},
	{"0b", 2},
}

func uint64FromRadix(s string, radix int) (uint64, bool) {
	v, err := strconv.ParseUint(s, radix, 64)
	return v, err == nil
}

func int64FromRadix(s string, radix int) (int64, bool) {
	v, err := strconv.ParseInt(s, radix, 64)
	return v, err == nil
}

func bigIntFromRadix(s string, radix int) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, radix)
	return v, ok
}

func parseFloat64(scalar string) (float64, bool) {
	unpositive := scalar
	if rest, ok := strings.CutPrefix(scalar, "+"); ok {
		if hasSign(rest) {
			return 0, false
		}
		unpositive = rest
	}
	switch unpositive {
	case ".inf", ".Inf", ".INF":
		return math.Inf(1), true
	}
	switch scalar {
	case "-.inf", "-.Inf", "-.INF":
		return math.Inf(-1), true
	case ".nan", ".NaN", ".NAN":
		return math.NaN(), true
	}
	// the stdlib accepts underscores and hex floats; the core schema does
	// not
	if strings.IndexByte(unpositive, '_') >= 0 || hasRadixPrefix(unpositive) {
		return 0, false
	}
	f, err := strconv.ParseFloat(unpositive, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func hasRadixPrefix(s string) bool {
	s = strings.TrimPrefix(s, "-")
	for _, p := range radixPrefixes {
		if strings.HasPrefix(s, p.prefix) {
			return true
		}
	}
	return false
}

// visitInt resolves an integer through the widening ladder: unsigned 64,
// negative 64, then the big-integer lane for values past both.
func visitInt(v Visitor, s string) (error, bool) {
	if u, ok := parseUnsignedInt(s, uint64FromRadix); ok {
		return v.VisitUint(u), true
	}
	if i, ok := parseNegativeInt(s, int64FromRadix); ok {
		return v.VisitInt(i), true
	}
	if b, ok := parseUnsignedInt(s, bigIntFromRadix); ok {
		return v.VisitBigInt(b), true
	}
	if b, ok := parseNegativeInt(s, bigIntFromRadix); ok {
		return v.VisitBigInt(b), true
	}
	return nil, false
}

// materializeString returns the scalar's text, sharing the source buffer
// when the decoded text is byte-identical to its expected window inside the
// representation: the whole window for plain scalars, one byte in from each
// side for quoted ones. Block scalars always transform, so they always copy.
func materializeString(val string, s *event.Scalar) string {
	if s.Repr == nil {
		return val
	}
	var off int
	switch s.Style {
	case event.Plain:
	case event.SingleQuoted, event.DoubleQuoted:
		off = 1
	default:
		return val
	}
	end := len(s.Repr) - off
	start := end - len(val)
	if start < 0 || len(val) == 0 {
		return val
	}
	w := s.Repr[start:end]
	if string(w) != val {
		return val
	}
	return unsafe.String(unsafe.SliceData(w), len(w))
}

// visitScalar applies the scalar-typing rules: an explicit core tag forces
// its type strictly, an untagged plain scalar resolves automatically, and
// everything else is a string.
func visitScalar(v Visitor, s *event.Scalar) error {
	if !utf8.Valid(s.Value) {
		return errs.Message("invalid type: byte array, expected %s", v.Expecting())
	}
	val := string(s.Value)
	switch {
	case s.Tag == "!!bool":
		if b, ok := parseBool(val); ok {
			return v.VisitBool(b)
		}
		return errs.Message("invalid value: string %q, expected a boolean", val)
	case s.Tag == "!!int":
		if err, ok := visitInt(v, val); ok {
			return err
		}
		return errs.Message("invalid value: string %q, expected an integer", val)
	case s.Tag == "!!float":
		if f, ok := parseFloat64(val); ok {
			return v.VisitFloat(f)
		}
		return errs.Message("invalid value: string %q, expected a float", val)
	case s.Tag == "!!null":
		if parseNull(val) {
			return v.VisitNull()
		}
		return errs.Message("invalid value: string %q, expected null", val)
	case s.Tag == "" && s.Style == event.Plain:
		return visitUntagged(v, val, s)
	}
	return v.VisitString(materializeString(val, s))
}

func visitUntagged(v Visitor, val string, s *event.Scalar) error {
	if val == "" || parseNull(val) {
		return v.VisitNull()
	}
	if b, ok := parseBool(val); ok {
		return v.VisitBool(b)
	}
	if err, ok := visitInt(v, val); ok {
		return err
	}
	if !digitsButNotNumber(val) {
		if f, ok := parseFloat64(val); ok {
			return v.VisitFloat(f)
		}
	}
	return v.VisitString(materializeString(val, s))
}
