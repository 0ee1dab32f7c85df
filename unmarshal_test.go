package yamel

import (
	"math/big"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamel-format/yamel/errs"
)

func TestUnmarshalStruct(t *testing.T) {
	t.Parallel()

	var got struct {
		Name  string
		Count int
		Ratio float64
		Tags  []string
	}
	err := UnmarshalString("name: widget\ncount: 12\nratio: 0.5\ntags:\n  - a\n  - b\n", &got)
	require.NoError(t, err)
	assert.Equal(t, "widget", got.Name)
	assert.Equal(t, 12, got.Count)
	assert.Equal(t, 0.5, got.Ratio)
	assert.Equal(t, []string{"a", "b"}, got.Tags)
}

func TestUnmarshalRenamedFields(t *testing.T) {
	t.Parallel()

	var got struct {
		Addr    string `yaml:"address"`
		Skipped string `yaml:"-"`
		Opt     int    `yaml:"opt,omitempty"`
	}
	err := UnmarshalString("address: here\n", &got)
	require.NoError(t, err)
	assert.Equal(t, "here", got.Addr)
	assert.Zero(t, got.Opt)
}

func TestErrorCarriesPathAndPosition(t *testing.T) {
	t.Parallel()

	var got struct {
		Widget struct {
			Parts []struct {
				Name  string
				Count int
			} `yaml:"parts"`
		} `yaml:"widget"`
	}
	src := "widget:\n  parts:\n    - name: axle\n      count: twelve\n"
	err := UnmarshalString(src, &got)
	require.EqualError(t, err,
		`widget.parts[0].count: invalid type: string "twelve", expected int at line 4 column 14`)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	mark, ok := e.Mark()
	require.True(t, ok)
	assert.Equal(t, 4, mark.Line)
	assert.Equal(t, 14, mark.Column)
	assert.Equal(t, "widget.parts[0].count", e.Path())
}

func TestMissingField(t *testing.T) {
	t.Parallel()

	var got struct {
		X int `yaml:"x"`
		W int
	}
	err := UnmarshalString("x: 1\n", &got)
	require.EqualError(t, err, "missing field `w` at line 1 column 1")
}

func TestPointerFieldsAreOptional(t *testing.T) {
	t.Parallel()

	var got struct {
		A *int    `yaml:"a"`
		B *string `yaml:"b"`
	}
	require.NoError(t, UnmarshalString("a: 3\n", &got))
	require.NotNil(t, got.A)
	assert.Equal(t, 3, *got.A)
	assert.Nil(t, got.B)

	got.A, got.B = nil, nil
	require.NoError(t, UnmarshalString("a: ~\nb: hi\n", &got))
	assert.Nil(t, got.A)
	require.NotNil(t, got.B)
	assert.Equal(t, "hi", *got.B)
}

func TestEmptyQuotedIsPresent(t *testing.T) {
	t.Parallel()

	var got struct {
		A *string `yaml:"a"`
		B *string `yaml:"b"`
	}
	require.NoError(t, UnmarshalString("a: ''\nb:\n", &got))
	require.NotNil(t, got.A)
	assert.Equal(t, "", *got.A)
	assert.Nil(t, got.B)
}

func TestMoreThanOneDocument(t *testing.T) {
	t.Parallel()

	var v any
	err := UnmarshalString("a: 1\n---\nb: 2\n", &v)
	require.EqualError(t, err,
		"deserializing from YAML containing more than one document is not supported")
	assert.ErrorIs(t, err, errs.ErrMoreThanOneDocument)
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()

	var v any
	err := UnmarshalString("", &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrEndOfStream)
}

func TestUnmarshalAny(t *testing.T) {
	t.Parallel()

	var v any
	err := UnmarshalString("a: [1, two, 3.5]\nb: true\nc: ~\n", &v)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": []any{int64(1), "two", 3.5},
		"b": true,
		"c": nil,
	}, v)
}

func TestUnmarshalAliases(t *testing.T) {
	t.Parallel()

	var v any
	err := UnmarshalString("base: &b\n  x: 1\nother: *b\n", &v)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"base":  map[string]any{"x": int64(1)},
		"other": map[string]any{"x": int64(1)},
	}, v)
}

func TestArrayArity(t *testing.T) {
	t.Parallel()

	var long [2]int
	err := UnmarshalString("[1, 2, 3]", &long)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid length 3, expected sequence of 2 elements")

	var short [2]int
	err = UnmarshalString("[1]", &short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid length 1, expected an array of length 2")

	var exact [2]int
	require.NoError(t, UnmarshalString("[1, 2]", &exact))
	assert.Equal(t, [2]int{1, 2}, exact)
}

func TestBigIntegers(t *testing.T) {
	t.Parallel()

	var v any
	require.NoError(t, UnmarshalString("36893488147419103232", &v))
	b, ok := v.(*big.Int)
	require.True(t, ok)
	assert.Zero(t, new(big.Int).Lsh(big.NewInt(1), 65).Cmp(b))

	var s struct {
		N big.Int `yaml:"n"`
	}
	require.NoError(t, UnmarshalString("n: 36893488147419103232\n", &s))
	assert.Zero(t, new(big.Int).Lsh(big.NewInt(1), 65).Cmp(&s.N))
}

func TestIntegerWidthChecks(t *testing.T) {
	t.Parallel()

	var u8 struct {
		N uint8 `yaml:"n"`
	}
	err := UnmarshalString("n: 300\n", &u8)
	require.EqualError(t, err, "n: invalid value: integer `300`, expected uint8 at line 1 column 4")

	var i16 struct {
		N int16 `yaml:"n"`
	}
	err = UnmarshalString("n: 40000\n", &i16)
	require.EqualError(t, err, "n: invalid value: integer `40000`, expected int16 at line 1 column 4")

	require.NoError(t, UnmarshalString("n: 255\n", &u8))
	assert.Equal(t, uint8(255), u8.N)
}

func TestStringKeepsRepresentation(t *testing.T) {
	t.Parallel()

	var got struct {
		V string `yaml:"v"`
	}
	require.NoError(t, UnmarshalString("v: 007\n", &got))
	assert.Equal(t, "007", got.V)

	require.NoError(t, UnmarshalString("v: 1\n", &got))
	assert.Equal(t, "1", got.V)
}

func TestZeroCopyStrings(t *testing.T) {
	t.Parallel()

	data := []byte("name: hello\n")
	var got struct {
		Name string `yaml:"name"`
	}
	require.NoError(t, Unmarshal(data, &got))
	require.Equal(t, "hello", got.Name)
	assert.Equal(t, unsafe.Pointer(&data[6]), unsafe.Pointer(unsafe.StringData(got.Name)))
}

func TestMapTargets(t *testing.T) {
	t.Parallel()

	var si map[string]int
	require.NoError(t, UnmarshalString("a: 1\nb: 2\n", &si))
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, si)

	var ii map[int]string
	require.NoError(t, UnmarshalString("1: one\n2: two\n", &ii))
	assert.Equal(t, map[int]string{1: "one", 2: "two"}, ii)
}

func TestNonStringKeysFallBack(t *testing.T) {
	t.Parallel()

	var v any
	require.NoError(t, UnmarshalString("1: a\ntrue: b\n", &v))
	assert.Equal(t, map[any]any{int64(1): "a", true: "b"}, v)
}

func TestBytesTarget(t *testing.T) {
	t.Parallel()

	var got struct {
		B []byte `yaml:"b"`
	}
	require.NoError(t, UnmarshalString("b: hello\n", &got))
	assert.Equal(t, []byte("hello"), got.B)

	require.NoError(t, UnmarshalString("b: [104, 105]\n", &got))
	assert.Equal(t, []byte("hi"), got.B)
}

func TestTargetMustBePointer(t *testing.T) {
	t.Parallel()

	var v any
	err := UnmarshalString("1", v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-nil pointer")
}

func TestUnknownAnchorInSkippedValue(t *testing.T) {
	t.Parallel()

	// skipping a value does not forgive a dangling alias inside it
	var got struct {
		X int `yaml:"x"`
	}
	err := UnmarshalString("junk: *undef\nx: 1\n", &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownAnchor)
}

func TestInvalidValueForcedTag(t *testing.T) {
	t.Parallel()

	var v any
	err := UnmarshalString("x: !!int twelve\n", &v)
	require.EqualError(t, err, `x: invalid value: string "twelve", expected an integer at line 1 column 10`)
}
