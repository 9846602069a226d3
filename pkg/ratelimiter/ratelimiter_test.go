package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flashdeck/pkg/ratelimiter"
)

func newTestBucket(t *testing.T, cfg ratelimiter.Config) *ratelimiter.Bucket {
	t.Helper()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return b
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{"zero capacity", ratelimiter.Config{Capacity: 0, RefillRate: 1, RefillInterval: time.Second}},
		{"zero refill rate", ratelimiter.Config{Capacity: 5, RefillRate: 0, RefillInterval: time.Second}},
		{"zero refill interval", ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ratelimiter.NewBucket(store, tt.cfg)
			require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()

	b := newTestBucket(t, ratelimiter.Config{
		Capacity:       3,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	ctx := context.Background()

	for i := range 3 {
		result, err := b.Allow(ctx, "key")
		require.NoError(t, err)
		assert.True(t, result.Allowed(), "request %d should be allowed", i)
		assert.Equal(t, 3, result.Limit)
	}

	result, err := b.Allow(ctx, "key")
	require.NoError(t, err)
	assert.False(t, result.Allowed())
	assert.Positive(t, result.RetryAfter())
}

func TestBucket_AllowN(t *testing.T) {
	t.Parallel()

	b := newTestBucket(t, ratelimiter.Config{
		Capacity:       10,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	ctx := context.Background()

	result, err := b.AllowN(ctx, "key", 10)
	require.NoError(t, err)
	assert.True(t, result.Allowed())
	assert.Equal(t, 0, result.Remaining)

	result, err = b.AllowN(ctx, "key", 1)
	require.NoError(t, err)
	assert.False(t, result.Allowed())

	_, err = b.AllowN(ctx, "key", 0)
	require.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestBucket_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	b := newTestBucket(t, ratelimiter.Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	ctx := context.Background()

	result, err := b.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, result.Allowed())

	result, err = b.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, result.Allowed())

	result, err = b.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, result.Allowed())
}

func TestBucket_Refill(t *testing.T) {
	t.Parallel()

	b := newTestBucket(t, ratelimiter.Config{
		Capacity:       2,
		RefillRate:     2,
		RefillInterval: 50 * time.Millisecond,
	})
	ctx := context.Background()

	for range 2 {
		result, err := b.Allow(ctx, "key")
		require.NoError(t, err)
		require.True(t, result.Allowed())
	}

	result, err := b.Allow(ctx, "key")
	require.NoError(t, err)
	require.False(t, result.Allowed())

	time.Sleep(60 * time.Millisecond)

	result, err = b.Allow(ctx, "key")
	require.NoError(t, err)
	assert.True(t, result.Allowed())
}

func TestBucket_Reset(t *testing.T) {
	t.Parallel()

	b := newTestBucket(t, ratelimiter.Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	ctx := context.Background()

	result, err := b.Allow(ctx, "key")
	require.NoError(t, err)
	require.True(t, result.Allowed())

	result, err = b.Allow(ctx, "key")
	require.NoError(t, err)
	require.False(t, result.Allowed())

	require.NoError(t, b.Reset(ctx, "key"))

	result, err = b.Allow(ctx, "key")
	require.NoError(t, err)
	assert.True(t, result.Allowed())
}

func TestBucket_Status(t *testing.T) {
	t.Parallel()

	b := newTestBucket(t, ratelimiter.Config{
		Capacity:       5,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	ctx := context.Background()

	// An untouched key peeks at a full bucket.
	result, err := b.Status(ctx, "untouched")
	require.NoError(t, err)
	assert.Equal(t, 5, result.Remaining)
	assert.True(t, result.Allowed())

	_, err = b.Allow(ctx, "key")
	require.NoError(t, err)

	result, err = b.Status(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Remaining)

	// Status must not consume.
	result, err = b.Status(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Remaining)
}
