package cache

import (
	"context"
	"time"
)

// Cache defines the key operations used for single-use markers and short leases.
// This is a port that can be implemented by different providers (Redis, in-memory, etc.).
type Cache interface {
	// SetNX stores the value only if the key does not exist yet.
	// Returns true when the key was created by this call.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// CompareAndDelete removes key only while it still holds value.
	// Returns true when the key was removed.
	CompareAndDelete(ctx context.Context, key string, value []byte) (bool, error)

	// Ping checks if the cache service is reachable.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
