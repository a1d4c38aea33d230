package ports

import (
	"context"

	"pronto-sync/internal/core/retry"
	orders "pronto-sync/internal/features/orders/domain"
	"pronto-sync/internal/features/sync/domain"
)

// ProcessingService defines the primary port for storefront order events.
type ProcessingService interface {
	OnOrderReachedProcessing(ctx context.Context, orderID int64) (*domain.ProcessingResult, error)
}

// AdminService defines the primary port for administrator actions.
type AdminService interface {
	ManualSync(ctx context.Context, orderID int64) (orders.SyncState, error)
	ManualFetch(ctx context.Context, orderID int64) (retry.Outcome, error)
	Status(ctx context.Context, orderID int64) (*domain.StatusView, error)
}
