package ports

import (
	"context"

	"pronto-sync/internal/features/notifications/domain"
)

// Notifier delivers outbound messages.
// Implementations return *apperror.NotificationDeliveryError when delivery fails.
type Notifier interface {
	Send(ctx context.Context, msg domain.Message) error
}

// AlertOutbox holds operations alerts whose delivery failed until they can be resent.
type AlertOutbox interface {
	Push(ctx context.Context, alert domain.OpsAlert) error
	// Pop removes the oldest pending alert. It returns nil when none is pending.
	Pop(ctx context.Context) (*domain.OpsAlert, error)
}
