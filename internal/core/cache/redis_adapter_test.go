package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter, mr
}

func TestRedisAdapter_SetNX(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	created, err := adapter.SetNX(ctx, "once", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = adapter.SetNX(ctx, "once", []byte("2"), time.Minute)
	require.NoError(t, err)
	assert.False(t, created)

	value, err := mr.Get("once")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestRedisAdapter_CompareAndDelete(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	_, err := adapter.SetNX(ctx, "lease", []byte("owner-a"), time.Minute)
	require.NoError(t, err)

	deleted, err := adapter.CompareAndDelete(ctx, "lease", []byte("owner-b"))
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.True(t, mr.Exists("lease"))

	deleted, err = adapter.CompareAndDelete(ctx, "lease", []byte("owner-a"))
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, mr.Exists("lease"))

	deleted, err = adapter.CompareAndDelete(ctx, "lease", []byte("owner-a"))
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	created, err := adapter.SetNX(ctx, "ttl_test", []byte("expires_soon"), 1*time.Second)
	require.NoError(t, err)
	require.True(t, created)

	mr.FastForward(2 * time.Second)

	created, err = adapter.SetNX(ctx, "ttl_test", []byte("again"), time.Second)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestRedisAdapter_ConnectionError(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	mr.Close()

	_, err := adapter.SetNX(context.Background(), "k", []byte("v"), time.Second)
	assert.Error(t, err)
	_, err = adapter.CompareAndDelete(context.Background(), "k", []byte("v"))
	assert.Error(t, err)
	assert.Error(t, adapter.Ping(context.Background()))
}

func TestRedisAdapter_Ping(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	assert.NoError(t, adapter.Ping(context.Background()))
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("invalid://url")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
