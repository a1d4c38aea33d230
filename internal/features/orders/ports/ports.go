package ports

import (
	"context"
	"time"

	"pronto-sync/internal/features/orders/domain"
)

// OrderStore persists order aggregates and their sync metadata.
// This is a Secondary Port (Driven Port).
type OrderStore interface {
	// GetOrder returns the stored aggregate or apperror.ErrNotFound.
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	// SaveOrder stores or replaces the aggregate.
	SaveOrder(ctx context.Context, order *domain.Order) error
	// GetMeta returns the order metadata; a missing bag yields an empty Meta.
	GetMeta(ctx context.Context, orderID int64) (*domain.Meta, error)
	// SaveMeta replaces the metadata bag atomically and refreshes the eligibility indexes.
	SaveMeta(ctx context.Context, orderID int64, meta *domain.Meta) error
	// AwaitingNumber lists orders submitted at or before syncedBefore that still lack a number, oldest first.
	AwaitingNumber(ctx context.Context, syncedBefore time.Time, limit int64) ([]int64, error)
	// AwaitingShipment lists numbered orders without a shipment, oldest tracking start first.
	AwaitingShipment(ctx context.Context, limit int64) ([]int64, error)
	// GateWatch lists orders with an open approval-gate timer or retry, earliest deadline first.
	GateWatch(ctx context.Context, dueBefore time.Time, limit int64) ([]int64, error)
}

// StoreFront is the e-commerce platform orders originate from.
type StoreFront interface {
	// GetOrder fetches an order aggregate by id.
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	// UpdateStatus moves the order to a new storefront status.
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	// AddNote appends a private order note.
	AddNote(ctx context.Context, orderID int64, note string) error
	// AddShipmentTracking attaches a carrier tracking reference to the order.
	AddShipmentTracking(ctx context.Context, orderID int64, carrier, trackingNumber string) error
}

// OrderLocker serialises read-check-write sequences on a single order across
// concurrent webhooks, admin actions, dealer links and scheduler ticks.
type OrderLocker interface {
	// Lock blocks until the order is free and returns the function releasing it.
	// It fails with apperror.ErrOrderBusy when the order stays locked too long.
	Lock(ctx context.Context, orderID int64) (unlock func(), err error)
}
