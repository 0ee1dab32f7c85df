package yamel

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamel-format/yamel/errs"
)

func TestDecoderStream(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(strings.NewReader("---\nn: 0\n---\nn: 1\n"))
	for i := 0; i < 2; i++ {
		var got struct {
			N int `yaml:"n"`
		}
		require.NoError(t, dec.Decode(&got))
		assert.Equal(t, i, got.N)
	}
	var v any
	assert.Equal(t, io.EOF, dec.Decode(&v))
	assert.Equal(t, io.EOF, dec.Decode(&v))
}

func TestDecoderBrokenMiddleDocument(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(strings.NewReader("x: 1\n---\n{\n---\ny: 2\n"))

	var first map[string]int
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, map[string]int{"x": 1}, first)

	var broken any
	err := dec.Decode(&broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrSyntax)

	var third map[string]int
	require.NoError(t, dec.Decode(&third))
	assert.Equal(t, map[string]int{"y": 2}, third)

	var v any
	assert.Equal(t, io.EOF, dec.Decode(&v))
}

func TestDecoderPoisonedSource(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(bytes.NewReader([]byte{0xff, 0xfe}))
	for i := 0; i < 2; i++ {
		var v any
		err := dec.Decode(&v)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidUTF8)
	}
}

func TestDecoderKnownFields(t *testing.T) {
	t.Parallel()

	type conf struct {
		X int `yaml:"x"`
	}

	dec := NewDecoder(strings.NewReader("x: 1\nextra: 2\n"))
	dec.KnownFields(true)
	var c conf
	err := dec.Decode(&c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field `extra`")

	dec = NewDecoder(strings.NewReader("x: 1\nextra: 2\n"))
	c = conf{}
	require.NoError(t, dec.Decode(&c))
	assert.Equal(t, 1, c.X)
}
