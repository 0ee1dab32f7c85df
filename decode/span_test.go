package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureSpanFlowSequence(t *testing.T) {
	t.Parallel()

	src := " [1, 22, 333]"
	d := docOf(t, src)

	var elements []Span
	outer, err := d.CaptureSpan(func(d *Decoder) error {
		return d.Seq(&spanSeq{spans: &elements})
	})
	require.NoError(t, err)

	assert.Equal(t, Span{Start: 1, Len: 12, Path: "."}, outer)
	assert.Equal(t, src[outer.Start:outer.Start+outer.Len], "[1, 22, 333]")

	require.Len(t, elements, 3)
	assert.Equal(t, Span{Start: 2, Len: 1, Path: ".[0]"}, elements[0])
	assert.Equal(t, Span{Start: 5, Len: 2, Path: ".[1]"}, elements[1])
	assert.Equal(t, Span{Start: 9, Len: 3, Path: ".[2]"}, elements[2])
	for _, s := range elements {
		assert.NotEmpty(t, src[s.Start:s.Start+s.Len])
	}
}

type spanSeq struct {
	Base
	spans *[]Span
}

func (v *spanSeq) VisitSeq(a *SeqAccess) error {
	for {
		ok, err := a.Element(func(d *Decoder) error {
			span, err := d.CaptureSpan(func(d *Decoder) error { return d.Ignored() })
			if err != nil {
				return err
			}
			*v.spans = append(*v.spans, span)
			return nil
		})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

type spanMap struct {
	Base
	spans map[string]Span
}

func (v *spanMap) VisitMap(a *MapAccess) error {
	for {
		key := &capture{}
		ok, err := a.Key(func(d *Decoder) error { return d.Str(key) })
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		err = a.Value(func(d *Decoder) error {
			span, err := d.CaptureSpan(func(d *Decoder) error { return d.Ignored() })
			if err != nil {
				return err
			}
			v.spans[key.v.(string)] = span
			return nil
		})
		if err != nil {
			return err
		}
	}
}

func TestCaptureSpanFlowMappingValue(t *testing.T) {
	t.Parallel()

	src := "nested: {}\n"
	d := docOf(t, src)
	v := &spanMap{spans: map[string]Span{}}
	require.NoError(t, d.Map(v))
	span, ok := v.spans["nested"]
	require.True(t, ok)
	assert.Equal(t, Span{Start: 8, Len: 2, Path: "nested"}, span)
	assert.Equal(t, "{}", src[span.Start:span.Start+span.Len])
}

func TestCaptureSpanBlockMapping(t *testing.T) {
	t.Parallel()

	src := "a: 1\nb: 2\n"
	d := docOf(t, src)
	span, err := d.CaptureSpan(func(d *Decoder) error { return d.Ignored() })
	require.NoError(t, err)
	assert.Equal(t, Span{Start: 0, Len: 9, Path: "."}, span)
	assert.Equal(t, "a: 1\nb: 2", src[span.Start:span.Start+span.Len])
}

func TestCaptureSpanScalarValue(t *testing.T) {
	t.Parallel()

	src := "k: hi\n"
	d := docOf(t, src)
	v := &spanMap{spans: map[string]Span{}}
	require.NoError(t, d.Map(v))
	span := v.spans["k"]
	assert.Equal(t, Span{Start: 3, Len: 2, Path: "k"}, span)
	assert.Equal(t, "hi", src[span.Start:span.Start+span.Len])
}
