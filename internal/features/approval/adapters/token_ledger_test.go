package adapters

import (
	"context"
	"testing"
	"time"

	"pronto-sync/internal/core/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*CacheTokenLedger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return NewCacheTokenLedger(adapter), mr
}

func TestCacheTokenLedger_ConsumeOnce(t *testing.T) {
	ledger, mr := newTestLedger(t)
	ctx := context.Background()

	ok, err := ledger.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ledger.Consume(ctx, "jti-2", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.Exists("dealer-token:used:jti-1"))
	assert.Equal(t, time.Hour, mr.TTL("dealer-token:used:jti-1"))
}

func TestCacheTokenLedger_Release(t *testing.T) {
	ledger, mr := newTestLedger(t)
	ctx := context.Background()

	ok, err := ledger.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, ledger.Release(ctx, "jti-1"))
	assert.False(t, mr.Exists("dealer-token:used:jti-1"))

	ok, err = ledger.Consume(ctx, "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	// releasing an unknown token is harmless
	assert.NoError(t, ledger.Release(ctx, "jti-unknown"))
}

func TestCacheTokenLedger_Unavailable(t *testing.T) {
	ledger, mr := newTestLedger(t)
	mr.Close()

	_, err := ledger.Consume(context.Background(), "jti-1", time.Hour)
	assert.Error(t, err)
}
