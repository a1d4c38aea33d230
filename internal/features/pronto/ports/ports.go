package ports

import (
	"context"

	"pronto-sync/internal/features/pronto/domain"
)

// Client talks to the Pronto order API. Each call performs exactly one HTTP
// request and never retries; an empty environment selects the default one.
type Client interface {
	// Submit creates a sales order and returns its transaction id.
	Submit(ctx context.Context, env domain.Environment, payload *domain.OrderPayload) (string, error)
	// FetchOrderNumber resolves a transaction id. Returns domain.ErrNotReady while unassigned.
	FetchOrderNumber(ctx context.Context, env domain.Environment, transactionID string) (string, error)
	// FetchShipment looks up the consignment of an order. Returns domain.ErrNotReady before dispatch.
	FetchShipment(ctx context.Context, env domain.Environment, orderNumber string) (*domain.TrackingRef, error)
}
