package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type counterRedis struct {
	counts map[string]int64
	keys   []string
}

func (c *counterRedis) Delete(ctx context.Context, key string) error { return nil }
func (c *counterRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return nil
}
func (c *counterRedis) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (c *counterRedis) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}
func (c *counterRedis) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	c.counts[key]++
	c.keys = append(c.keys, key)
	return c.counts[key], nil
}
func (c *counterRedis) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	return true, nil
}
func (c *counterRedis) Expire(ctx context.Context, key string, exp time.Duration) error { return nil }

func TestApplyResourceLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 0, 30, 0, time.UTC)

	newLimiter := func() (*ResourceLimiter, *counterRedis) {
		redis := &counterRedis{counts: map[string]int64{}}
		limiter := NewResourceLimiter(redis, zap.NewNop())
		limiter.now = func() time.Time { return now }
		return limiter, redis
	}

	t.Run("blocks after quota within one window", func(t *testing.T) {
		limiter, _ := newLimiter()
		in := &ApplyResourceLimiterInput{ResourceName: "A@x.io", LimiterGroupName: "login", WindowDurationSec: 60, MaxQuota: 2}

		for i := 0; i < 2; i++ {
			out, err := limiter.ApplyResourceLimiter(ctx, in)
			require.NoError(t, err)
			assert.True(t, out.Allowed)
		}

		out, err := limiter.ApplyResourceLimiter(ctx, in)
		require.NoError(t, err)
		assert.False(t, out.Allowed)
		assert.Equal(t, 31, out.RetryAfterSecs)
	})

	t.Run("resource names are case insensitive", func(t *testing.T) {
		limiter, redis := newLimiter()
		_, err := limiter.ApplyResourceLimiter(ctx, &ApplyResourceLimiterInput{ResourceName: "A@x.io", LimiterGroupName: "login", MaxQuota: 5})
		require.NoError(t, err)
		_, err = limiter.ApplyResourceLimiter(ctx, &ApplyResourceLimiterInput{ResourceName: " a@X.io ", LimiterGroupName: "LOGIN", MaxQuota: 5})
		require.NoError(t, err)

		require.Len(t, redis.keys, 2)
		assert.Equal(t, redis.keys[0], redis.keys[1])
	})

	t.Run("zero quota disables the limiter", func(t *testing.T) {
		limiter, redis := newLimiter()
		out, err := limiter.ApplyResourceLimiter(ctx, &ApplyResourceLimiterInput{ResourceName: "a", LimiterGroupName: "login"})
		require.NoError(t, err)
		assert.True(t, out.Allowed)
		assert.Empty(t, redis.keys)
	})
}
