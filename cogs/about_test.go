package cogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHelp(t *testing.T) {
	cog := NewAbout()

	fns := cog.Functions()
	require.Len(t, fns, 1)
	assert.Equal(t, "help", fns[0].GetName())

	resp, err := cog.handleHelp(nil, helpRequest{})
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "Zwift")
}
