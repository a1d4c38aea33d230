package adapters

import (
	"context"
	"fmt"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/cache"
	"pronto-sync/internal/core/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const orderLockKeyPrefix = "order-lock:"

// Lock timings. The lease outlives the slowest Pronto call so it only
// expires when the holder died.
const (
	DefaultLockLease = 2 * time.Minute
	DefaultLockWait  = 15 * time.Second
	lockPollInterval = 25 * time.Millisecond
)

// CacheOrderLocker implements ports.OrderLocker with a lease per order in the
// shared cache. Each holder writes its own token so a late release never frees
// someone else's lease.
type CacheOrderLocker struct {
	cache cache.Cache
	lease time.Duration
	wait  time.Duration
}

// NewCacheOrderLocker creates a new CacheOrderLocker.
func NewCacheOrderLocker(c cache.Cache, lease, wait time.Duration) *CacheOrderLocker {
	return &CacheOrderLocker{
		cache: c,
		lease: lease,
		wait:  wait,
	}
}

// Lock acquires the lease of orderID, polling until wait elapses.
func (l *CacheOrderLocker) Lock(ctx context.Context, orderID int64) (func(), error) {
	key := fmt.Sprintf("%s%d", orderLockKeyPrefix, orderID)
	token := []byte(uuid.NewString())
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.cache.SetNX(ctx, key, token, l.lease)
		if err != nil {
			return nil, fmt.Errorf("lock order %d: %w", orderID, err)
		}
		if acquired {
			return func() { l.release(ctx, key, token) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: order %d", apperror.ErrOrderBusy, orderID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (l *CacheOrderLocker) release(ctx context.Context, key string, token []byte) {
	released, err := l.cache.CompareAndDelete(context.WithoutCancel(ctx), key, token)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to release order lock", zap.String("key", key), zap.Error(err))
		return
	}
	if !released {
		logger.FromContext(ctx).Warn("Order lock expired before release", zap.String("key", key))
	}
}
