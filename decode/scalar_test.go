package decode

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamel-format/yamel/event"
)

func TestDigitsButNotNumber(t *testing.T) {
	t.Parallel()

	yes := []string{"007", "-007", "+01", "00"}
	for _, s := range yes {
		assert.True(t, digitsButNotNumber(s), s)
	}
	no := []string{"0", "7", "0x07", "07a", "", "-0"}
	for _, s := range no {
		assert.False(t, digitsButNotNumber(s), s)
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	b, ok := parseBool("true")
	require.True(t, ok)
	assert.True(t, b)
	b, ok = parseBool("false")
	require.True(t, ok)
	assert.False(t, b)

	for _, s := range []string{"True", "FALSE", "yes", "on", "1", ""} {
		_, ok := parseBool(s)
		assert.False(t, ok, s)
	}
}

func TestParseNull(t *testing.T) {
	t.Parallel()

	assert.True(t, parseNull("~"))
	assert.True(t, parseNull("null"))
	assert.False(t, parseNull("Null"))
	assert.False(t, parseNull(""))
}

func TestParseUnsignedInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want uint64
		ok   bool
	}{
		{"12", 12, true},
		{"+12", 12, true},
		{"0", 0, true},
		{"0x1F", 31, true},
		{"0o17", 15, true},
		{"0b101", 5, true},
		{"+0x10", 16, true},
		{"-5", 0, false},
		{"0x-5", 0, false},
		{"0x+5", 0, false},
		{"007", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseUnsignedInt(c.in, uint64FromRadix)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

func TestParseSignedInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"-12", -12, true},
		{"+5", 5, true},
		{"-0x1F", -31, true},
		{"-0o17", -15, true},
		{"-0b101", -5, true},
		{"++5", 0, false},
		{"+-5", 0, false},
		{"-007", 0, false},
	}
	for _, c := range cases {
		got, ok := parseSignedInt(c.in, int64FromRadix)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

func TestParseFloat64(t *testing.T) {
	t.Parallel()

	f, ok := parseFloat64("1.5")
	require.True(t, ok)
	assert.Equal(t, 1.5, f)

	f, ok = parseFloat64("6.02e23")
	require.True(t, ok)
	assert.Equal(t, 6.02e23, f)

	for _, s := range []string{".inf", ".Inf", ".INF", "+.inf"} {
		f, ok := parseFloat64(s)
		require.True(t, ok, s)
		assert.True(t, math.IsInf(f, 1), s)
	}
	for _, s := range []string{"-.inf", "-.Inf", "-.INF"} {
		f, ok := parseFloat64(s)
		require.True(t, ok, s)
		assert.True(t, math.IsInf(f, -1), s)
	}
	for _, s := range []string{".nan", ".NaN", ".NAN"} {
		f, ok := parseFloat64(s)
		require.True(t, ok, s)
		assert.True(t, math.IsNaN(f), s)
	}

	// forms the stdlib would take but the core schema does not
	for _, s := range []string{"1_000.0", "0x1p-2", "inf", "nan", "1e400", "Infinity"} {
		_, ok := parseFloat64(s)
		assert.False(t, ok, s)
	}
}

func TestMaterializeStringBorrows(t *testing.T) {
	t.Parallel()

	src := []byte("key: value")
	s := &event.Scalar{Style: event.Plain, Value: []byte("value"), Repr: src[5:10]}
	got := materializeString("value", s)
	require.Equal(t, "value", got)
	assert.Equal(t, unsafe.Pointer(&src[5]), unsafe.Pointer(unsafe.StringData(got)))
}

func TestMaterializeStringCopies(t *testing.T) {
	t.Parallel()

	// escapes change the text, so the window does not match
	src := []byte(`"a\nb"`)
	s := &event.Scalar{Style: event.DoubleQuoted, Value: []byte("a\nb"), Repr: src}
	assert.Equal(t, "a\nb", materializeString("a\nb", s))

	// block scalars never borrow
	s = &event.Scalar{Style: event.Literal, Value: []byte("text\n")}
	assert.Equal(t, "text\n", materializeString("text\n", s))
}

func TestMaterializeStringQuotedBorrow(t *testing.T) {
	t.Parallel()

	src := []byte("k: 'hi'")
	s := &event.Scalar{Style: event.SingleQuoted, Value: []byte("hi"), Repr: src[3:7]}
	got := materializeString("hi", s)
	require.Equal(t, "hi", got)
	assert.Equal(t, unsafe.Pointer(&src[4]), unsafe.Pointer(unsafe.StringData(got)))
}
