package yamel

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/yamel-format/yamel/decode"
	"github.com/yamel-format/yamel/errs"
)

// The binder translates Go types into engine requests: each kind of target
// asks the decoder for exactly the shape it can hold, and the visitors here
// only ever see input the engine resolved to that shape.

func bindValue(d *decode.Decoder, v any, strict bool) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errs.Message("target must be a non-nil pointer, got %T", v)
	}
	return bind(d, rv.Elem(), strict)
}

type spanCarrier interface {
	spanValue() any
	setSpan(decode.Span)
}

var bigIntType = reflect.TypeOf(big.Int{})

func bind(d *decode.Decoder, rv reflect.Value, strict bool) error {
	if rv.CanAddr() {
		if sc, ok := rv.Addr().Interface().(spanCarrier); ok {
			span, err := d.CaptureSpan(func(d *decode.Decoder) error {
				return bindValue(d, sc.spanValue(), strict)
			})
			if err != nil {
				return err
			}
			sc.setSpan(span)
			return nil
		}
	}
	switch rv.Kind() {
	case reflect.Pointer:
		return d.Option(&optionVisitor{rv: rv, strict: strict})
	case reflect.Bool:
		return d.Bool(&boolVisitor{Base: decode.Base{Expect: "a boolean"}, rv: rv})
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return d.Int(&intVisitor{Base: decode.Base{Expect: rv.Type().String()}, rv: rv})
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return d.Uint(&uintVisitor{Base: decode.Base{Expect: rv.Type().String()}, rv: rv})
	case reflect.Float32, reflect.Float64:
		return d.Float(&floatVisitor{Base: decode.Base{Expect: rv.Type().String()}, rv: rv})
	case reflect.String:
		return d.Str(&stringVisitor{Base: decode.Base{Expect: "a string"}, rv: rv})
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return d.Bytes(&bytesVisitor{Base: decode.Base{Expect: "a byte array"}, rv: rv, strict: strict})
		}
		return d.Seq(&sliceVisitor{Base: decode.Base{Expect: "a sequence"}, rv: rv, strict: strict})
	case reflect.Array:
		n := rv.Len()
		return d.Tuple(n, &arrayVisitor{Base: decode.Base{Expect: expectArray(n)}, rv: rv, strict: strict})
	case reflect.Map:
		return d.Map(&mapVisitor{Base: decode.Base{Expect: "a map"}, rv: rv, strict: strict})
	case reflect.Struct:
		if rv.Type() == bigIntType {
			return d.BigInt(&bigIntVisitor{Base: decode.Base{Expect: "an integer"}, rv: rv})
		}
		t := rv.Type()
		fields := cachedFields(t)
		sv := &structVisitor{
			Base:   decode.Base{Expect: "struct " + t.Name()},
			rv:     rv,
			fields: fields,
			strict: strict,
		}
		return d.Struct(t.Name(), fields.names, sv)
	case reflect.Interface:
		if rv.NumMethod() == 0 {
			av := newAnyVisitor(strict)
			if err := d.Any(av); err != nil {
				return err
			}
			if av.value == nil {
				rv.SetZero()
			} else {
				rv.Set(reflect.ValueOf(av.value))
			}
			return nil
		}
		return errs.Message("cannot decode into non-empty interface %s", rv.Type())
	}
	return errs.Message("unsupported target type %s", rv.Type())
}

func expectArray(n int) string {
	return fmt.Sprintf("an array of length %d", n)
}

type optionVisitor struct {
	decode.Base
	rv     reflect.Value
	strict bool
}

func (v *optionVisitor) Expecting() string { return "an optional value" }

func (v *optionVisitor) VisitNull() error {
	v.rv.SetZero()
	return nil
}

func (v *optionVisitor) VisitSome(d *decode.Decoder) error {
	nv := reflect.New(v.rv.Type().Elem())
	if err := bind(d, nv.Elem(), v.strict); err != nil {
		return err
	}
	v.rv.Set(nv)
	return nil
}

type boolVisitor struct {
	decode.Base
	rv reflect.Value
}

func (v *boolVisitor) VisitBool(b bool) error {
	v.rv.SetBool(b)
	return nil
}

type intVisitor struct {
	decode.Base
	rv reflect.Value
}

func (v *intVisitor) VisitInt(i int64) error {
	if v.rv.OverflowInt(i) {
		return errs.Message("invalid value: integer `%d`, expected %s", i, v.Expecting())
	}
	v.rv.SetInt(i)
	return nil
}

type uintVisitor struct {
	decode.Base
	rv reflect.Value
}

func (v *uintVisitor) VisitUint(u uint64) error {
	if v.rv.OverflowUint(u) {
		return errs.Message("invalid value: integer `%d`, expected %s", u, v.Expecting())
	}
	v.rv.SetUint(u)
	return nil
}

type floatVisitor struct {
	decode.Base
	rv reflect.Value
}

func (v *floatVisitor) VisitFloat(f float64) error {
	if v.rv.OverflowFloat(f) {
		return errs.Message("invalid value: floating point `%v`, expected %s", f, v.Expecting())
	}
	v.rv.SetFloat(f)
	return nil
}

type bigIntVisitor struct {
	decode.Base
	rv reflect.Value
}

func (v *bigIntVisitor) VisitBigInt(b *big.Int) error {
	v.rv.Set(reflect.ValueOf(*b))
	return nil
}

type stringVisitor struct {
	decode.Base
	rv reflect.Value
}

func (v *stringVisitor) VisitString(s string) error {
	v.rv.SetString(s)
	return nil
}

type bytesVisitor struct {
	decode.Base
	rv     reflect.Value
	strict bool
}

func (v *bytesVisitor) VisitString(s string) error {
	v.rv.SetBytes([]byte(s))
	return nil
}

func (v *bytesVisitor) VisitNull() error {
	v.rv.SetZero()
	return nil
}

func (v *bytesVisitor) VisitSeq(a *decode.SeqAccess) error {
	sv := &sliceVisitor{Base: v.Base, rv: v.rv, strict: v.strict}
	return sv.VisitSeq(a)
}

type sliceVisitor struct {
	decode.Base
	rv     reflect.Value
	strict bool
}

func (v *sliceVisitor) VisitSeq(a *decode.SeqAccess) error {
	out := reflect.MakeSlice(v.rv.Type(), 0, 0)
	for {
		el := reflect.New(v.rv.Type().Elem()).Elem()
		ok, err := a.Element(func(d *decode.Decoder) error {
			return bind(d, el, v.strict)
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = reflect.Append(out, el)
	}
	v.rv.Set(out)
	return nil
}

type arrayVisitor struct {
	decode.Base
	rv     reflect.Value
	strict bool
}

func (v *arrayVisitor) VisitSeq(a *decode.SeqAccess) error {
	n := v.rv.Len()
	for i := 0; i < n; i++ {
		idx := i
		ok, err := a.Element(func(d *decode.Decoder) error {
			return bind(d, v.rv.Index(idx), v.strict)
		})
		if err != nil {
			return err
		}
		if !ok {
			return errs.Message("invalid length %d, expected %s", i, v.Expecting())
		}
	}
	return nil
}

type mapVisitor struct {
	decode.Base
	rv     reflect.Value
	strict bool
}

func (v *mapVisitor) VisitMap(a *decode.MapAccess) error {
	t := v.rv.Type()
	m := reflect.MakeMap(t)
	for {
		k := reflect.New(t.Key()).Elem()
		ok, err := a.Key(func(d *decode.Decoder) error {
			return bind(d, k, v.strict)
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		val := reflect.New(t.Elem()).Elem()
		if err := a.Value(func(d *decode.Decoder) error {
			return bind(d, val, v.strict)
		}); err != nil {
			return err
		}
		m.SetMapIndex(k, val)
	}
	v.rv.Set(m)
	return nil
}

type structVisitor struct {
	decode.Base
	rv     reflect.Value
	fields *typeFields
	strict bool
}

type keyVisitor struct {
	decode.Base
	s string
}

func (k *keyVisitor) VisitString(s string) error {
	k.s = s
	return nil
}

func (v *structVisitor) VisitMap(a *decode.MapAccess) error {
	seen := make([]bool, len(v.fields.list))
	for {
		key := &keyVisitor{Base: decode.Base{Expect: "a field name"}}
		ok, err := a.Key(func(d *decode.Decoder) error {
			return d.Identifier(key)
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		idx, found := v.fields.byName[key.s]
		if !found {
			if v.strict {
				return errs.Message("unknown field `%s`", key.s)
			}
			if err := a.Value(func(d *decode.Decoder) error {
				return d.Ignored()
			}); err != nil {
				return err
			}
			continue
		}
		seen[idx] = true
		f := v.fields.list[idx]
		if err := a.Value(func(d *decode.Decoder) error {
			return bind(d, v.rv.FieldByIndex(f.index), v.strict)
		}); err != nil {
			return err
		}
	}
	for i, f := range v.fields.list {
		if !seen[i] && !f.optional {
			return errs.Message("missing field `%s`", f.name)
		}
	}
	return nil
}

// Positional form: a sequence fills the struct's fields in declaration
// order.
func (v *structVisitor) VisitSeq(a *decode.SeqAccess) error {
	for i, f := range v.fields.list {
		ok, err := a.Element(func(d *decode.Decoder) error {
			return bind(d, v.rv.FieldByIndex(f.index), v.strict)
		})
		if err != nil {
			return err
		}
		if !ok {
			return errs.Message("invalid length %d, expected %s with %d elements", i, v.Expecting(), len(v.fields.list))
		}
	}
	return nil
}

// anyVisitor builds the generic representation: nil, bool, int64 (uint64
// when out of range, *big.Int beyond that), float64, string, []any, and
// map[string]any falling back to map[any]any on non-string keys.
type anyVisitor struct {
	decode.Base
	strict bool
	value  any
}

func newAnyVisitor(strict bool) *anyVisitor {
	return &anyVisitor{Base: decode.Base{Expect: "any YAML value"}, strict: strict}
}

func (v *anyVisitor) VisitBool(b bool) error {
	v.value = b
	return nil
}

func (v *anyVisitor) VisitInt(i int64) error {
	v.value = i
	return nil
}

func (v *anyVisitor) VisitUint(u uint64) error {
	if u <= math.MaxInt64 {
		v.value = int64(u)
	} else {
		v.value = u
	}
	return nil
}

func (v *anyVisitor) VisitBigInt(b *big.Int) error {
	v.value = b
	return nil
}

func (v *anyVisitor) VisitFloat(f float64) error {
	v.value = f
	return nil
}

func (v *anyVisitor) VisitString(s string) error {
	v.value = s
	return nil
}

func (v *anyVisitor) VisitNull() error {
	v.value = nil
	return nil
}

func (v *anyVisitor) VisitSome(d *decode.Decoder) error {
	inner := newAnyVisitor(v.strict)
	if err := d.Any(inner); err != nil {
		return err
	}
	v.value = inner.value
	return nil
}

func (v *anyVisitor) VisitSeq(a *decode.SeqAccess) error {
	out := []any{}
	for {
		el := newAnyVisitor(v.strict)
		ok, err := a.Element(func(d *decode.Decoder) error {
			return d.Any(el)
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = append(out, el.value)
	}
	v.value = out
	return nil
}

func (v *anyVisitor) VisitMap(a *decode.MapAccess) error {
	type pair struct{ k, v any }
	var pairs []pair
	allStrings := true
	for {
		kv := newAnyVisitor(v.strict)
		ok, err := a.Key(func(d *decode.Decoder) error {
			return d.Any(kv)
		})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		vv := newAnyVisitor(v.strict)
		if err := a.Value(func(d *decode.Decoder) error {
			return d.Any(vv)
		}); err != nil {
			return err
		}
		k := kv.value
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return errs.Message("invalid map key of type %T", k)
		}
		if _, isString := k.(string); !isString {
			allStrings = false
		}
		pairs = append(pairs, pair{k, vv.value})
	}
	if allStrings {
		m := make(map[string]any, len(pairs))
		for _, p := range pairs {
			m[p.k.(string)] = p.v
		}
		v.value = m
	} else {
		m := make(map[any]any, len(pairs))
		for _, p := range pairs {
			m[p.k] = p.v
		}
		v.value = m
	}
	return nil
}
