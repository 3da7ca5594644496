package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_WithinBurst(t *testing.T) {
	krl := New(1, 3)

	assert.True(t, krl.Allow("upstream"))
	assert.True(t, krl.Allow("upstream"))
	assert.True(t, krl.Allow("upstream"))
	assert.False(t, krl.Allow("upstream"), "fourth request should exceed burst")
}

func TestAllow_IndependentKeys(t *testing.T) {
	krl := New(1, 1)

	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"))
	assert.True(t, krl.Allow("b"), "key b has its own bucket")
}

func TestWait_RespectsContext(t *testing.T) {
	krl := New(0.001, 1)
	require.True(t, krl.Allow("k"), "drain the only token")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := krl.Wait(ctx, "k")
	assert.Error(t, err, "Wait should fail once the context deadline passes")
}
