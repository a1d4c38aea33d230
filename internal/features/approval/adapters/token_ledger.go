package adapters

import (
	"context"
	"fmt"
	"time"

	"pronto-sync/internal/core/cache"
)

const usedTokenKeyPrefix = "dealer-token:used:"

var usedMarker = []byte("used")

// CacheTokenLedger implements ports.TokenLedger on top of the shared cache.
type CacheTokenLedger struct {
	cache cache.Cache
}

// NewCacheTokenLedger creates a new CacheTokenLedger.
func NewCacheTokenLedger(c cache.Cache) *CacheTokenLedger {
	return &CacheTokenLedger{cache: c}
}

// Consume marks jti as used until ttl elapses.
func (l *CacheTokenLedger) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	created, err := l.cache.SetNX(ctx, usedTokenKeyPrefix+jti, usedMarker, ttl)
	if err != nil {
		return false, fmt.Errorf("consume action token: %w", err)
	}
	return created, nil
}

// Release forgets that jti was used, for decisions that could not be recorded.
func (l *CacheTokenLedger) Release(ctx context.Context, jti string) error {
	if _, err := l.cache.CompareAndDelete(ctx, usedTokenKeyPrefix+jti, usedMarker); err != nil {
		return fmt.Errorf("release action token: %w", err)
	}
	return nil
}
