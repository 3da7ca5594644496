package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("snap")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "snap-"))
	assert.Greater(t, len(got), len("snap-"))
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id, err := Generate("snap")
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}
