package load

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamel-format/yamel/errs"
	"github.com/yamel-format/yamel/event"
)

func TestAnchorResolution(t *testing.T) {
	t.Parallel()

	l := New([]byte("a: &x 1\nb: *x\n"))
	doc := l.NextDocument()
	require.NotNil(t, doc)
	require.NoError(t, doc.Err)

	// events: map start, "a", anchored 1, "b", alias
	require.Len(t, doc.Events, 5)
	assert.Equal(t, 2, doc.Anchors["x"])
	alias := doc.Events[4]
	assert.Equal(t, event.KindAlias, alias.Kind)
	assert.Equal(t, 2, alias.Alias)

	assert.Nil(t, l.NextDocument())
}

func TestAnchorOnContainer(t *testing.T) {
	t.Parallel()

	l := New([]byte("a: &x\n  k: 1\nb: *x\n"))
	doc := l.NextDocument()
	require.NotNil(t, doc)
	require.NoError(t, doc.Err)

	target, ok := doc.Anchors["x"]
	require.True(t, ok)
	assert.Equal(t, event.KindMappingStart, doc.Events[target].Kind)
}

func TestUnknownAnchorTruncates(t *testing.T) {
	t.Parallel()

	l := New([]byte("b: *a\n"))
	doc := l.NextDocument()
	require.NotNil(t, doc)
	require.Error(t, doc.Err)
	assert.ErrorIs(t, doc.Err, errs.ErrUnknownAnchor)
	// nothing at or after the alias survives
	assert.Len(t, doc.Events, 2)
}

func TestForwardAliasIsUnknown(t *testing.T) {
	t.Parallel()

	// anchors resolve strictly backwards
	l := New([]byte("a: *x\nb: &x 1\n"))
	doc := l.NextDocument()
	require.NotNil(t, doc)
	assert.ErrorIs(t, doc.Err, errs.ErrUnknownAnchor)
}

func TestLoaderExhaustion(t *testing.T) {
	t.Parallel()

	l := New([]byte("a: 1\n"))
	require.NotNil(t, l.NextDocument())
	assert.Nil(t, l.NextDocument())
	assert.Nil(t, l.NextDocument())
}

func TestSourceBacksScalars(t *testing.T) {
	t.Parallel()

	l := FromReader(strings.NewReader("k: value\n"))
	doc := l.NextDocument()
	require.NotNil(t, doc)
	require.NoError(t, doc.Err)
	assert.Equal(t, "k: value\n", string(l.Source()))
}
