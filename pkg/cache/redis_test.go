package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	rc, err := NewRedisCache(WithRedisAddr(mr.Host(), port), WithRedisPrefix("test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	type snap struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	require.NoError(t, rc.Set(ctx, "latest:AAPL", snap{"AAPL", "187.25"}, time.Minute))

	raw, err := mr.Get("test:latest:AAPL")
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"AAPL","price":"187.25"}`, raw)

	var got snap
	require.NoError(t, rc.Get(ctx, "latest:AAPL", &got))
	assert.Equal(t, snap{"AAPL", "187.25"}, got)

	require.NoError(t, rc.Set(ctx, "note", "plain", 0))
	var s string
	require.NoError(t, rc.Get(ctx, "note", &s))
	assert.Equal(t, "plain", s)

	ok, err := rc.Exists(ctx, "note")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, rc.Delete(ctx, "note"))
	assert.ErrorIs(t, rc.Get(ctx, "note", &s), ErrCacheMiss)
}

func TestRedisCacheMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	var s string
	assert.ErrorIs(t, rc.Get(ctx, "absent", &s), ErrCacheMiss)

	require.NoError(t, rc.Set(ctx, "short", "v", time.Second))
	mr.FastForward(2 * time.Second)
	assert.ErrorIs(t, rc.Get(ctx, "short", &s), ErrCacheMiss)
}

func TestNewRedisCacheFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	mr.Close()

	_, err = NewRedisCache(WithRedisAddr(host, port))
	assert.Error(t, err)
}
