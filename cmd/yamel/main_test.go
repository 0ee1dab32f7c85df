package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainCommandTree(t *testing.T) {
	t.Parallel()

	c := MainCommand()
	require.NotNil(t, c)
	assert.Equal(t, "yamel", c.Name)

	var names []string
	for _, sub := range c.Children {
		names = append(names, sub.Name)
	}
	assert.Equal(t, []string{"dump", "get", "spans", "check", "diff"}, names)

	require.Len(t, c.Opts, 1)
	assert.Equal(t, "no-color", c.Opts[0].Name)
}
