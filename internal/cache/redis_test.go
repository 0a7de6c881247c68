package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookease/bookease-backend/internal/config"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cache, err := InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestInitServerInvalidAddr(t *testing.T) {
	cache, err := InitServer(context.Background(), config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	})
	assert.Nil(t, cache)
	assert.Error(t, err)
}

func TestSignInThrottle_LocksAfterMaxAttempts(t *testing.T) {
	cache, _ := setupTestCache(t)
	throttle := NewSignInThrottle(cache, 3, time.Minute)
	ctx := context.Background()
	email := "user@example.com"

	for i := range 3 {
		allowed, err := throttle.Allowed(ctx, email)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
		require.NoError(t, throttle.RegisterFailure(ctx, email))
	}

	allowed, err := throttle.Allowed(ctx, email)
	require.NoError(t, err)
	assert.False(t, allowed)

	other, err := throttle.Allowed(ctx, "other@example.com")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestSignInThrottle_WindowExpires(t *testing.T) {
	cache, mr := setupTestCache(t)
	throttle := NewSignInThrottle(cache, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, throttle.RegisterFailure(ctx, "a@example.com"))
	require.NoError(t, throttle.RegisterFailure(ctx, "a@example.com"))
	assert.Equal(t, time.Minute, mr.TTL("signin_failures:a@example.com"))

	allowed, err := throttle.Allowed(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(61 * time.Second)

	allowed, err = throttle.Allowed(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSignInThrottle_Reset(t *testing.T) {
	cache, mr := setupTestCache(t)
	throttle := NewSignInThrottle(cache, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, throttle.RegisterFailure(ctx, "b@example.com"))
	require.NoError(t, throttle.Reset(ctx, "b@example.com"))
	assert.False(t, mr.Exists("signin_failures:b@example.com"))

	allowed, err := throttle.Allowed(ctx, "b@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSignInThrottle_RedisDown(t *testing.T) {
	cache, mr := setupTestCache(t)
	throttle := NewSignInThrottle(cache, 1, time.Minute)
	mr.Close()

	allowed, err := throttle.Allowed(context.Background(), "c@example.com")
	assert.Error(t, err)
	assert.True(t, allowed)
	assert.Error(t, throttle.RegisterFailure(context.Background(), "c@example.com"))
}
