package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLoginLimiterWindow(t *testing.T) {
	limiter := NewMemoryLoginLimiter(3, time.Minute)
	defer limiter.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := limiter.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "attempt %d", i+1)
	}

	decision, err := limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, 0)
	assert.LessOrEqual(t, decision.RetryAfter, 60)
}

func TestMemoryLoginLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLoginLimiter(1, time.Minute)
	defer limiter.Stop()
	ctx := context.Background()

	decision, err := limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	// A different client is unaffected.
	decision, err = limiter.Check(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestMemoryLoginLimiterWindowResets(t *testing.T) {
	limiter := NewMemoryLoginLimiter(1, 30*time.Millisecond)
	defer limiter.Stop()
	ctx := context.Background()

	decision, err := limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	time.Sleep(50 * time.Millisecond)

	decision, err = limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRedisLoginLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisLoginLimiter(client, 2, time.Minute, newTestLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := limiter.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "attempt %d", i+1)
	}

	decision, err := limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, 0)
	assert.LessOrEqual(t, decision.RetryAfter, 60)

	// The window expires in Redis, not in process memory.
	mr.FastForward(time.Minute)

	decision, err = limiter.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRedisLoginLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisLoginLimiter(client, 1, time.Minute, newTestLogger())
	mr.Close()

	decision, err := limiter.Check(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
