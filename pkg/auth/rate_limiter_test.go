package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter_EnforcesLimit(t *testing.T) {
	limiter := NewSlidingWindowLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSlidingWindowLimiter_WindowExpires(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)

	allowed, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)
}
