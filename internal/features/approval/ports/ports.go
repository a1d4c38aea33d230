package ports

import (
	"context"
	"time"

	"pronto-sync/internal/features/approval/domain"
	orders "pronto-sync/internal/features/orders/domain"
)

// DecisionService defines the primary port for dealer decisions.
type DecisionService interface {
	HandleAction(ctx context.Context, orderID int64, action domain.Action, token string) (orders.GateState, error)
}

// TokenLedger records which action tokens were already used.
type TokenLedger interface {
	// Consume marks jti as used. It returns false when jti was consumed before.
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	// Release makes a consumed jti usable again.
	Release(ctx context.Context, jti string) error
}
