package service

import (
	"context"
	"errors"
	"time"

	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/features/notifications/domain"
	"pronto-sync/internal/features/notifications/ports"

	"go.uber.org/zap"
)

// Dispatcher is the single outbound notification path: dealer requests and
// operations alerts are rendered and delivered here.
type Dispatcher struct {
	notifier ports.Notifier
	outbox   ports.AlertOutbox
	opsEmail string
	now      func() time.Time
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(notifier ports.Notifier, outbox ports.AlertOutbox, opsEmail string) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		outbox:   outbox,
		opsEmail: opsEmail,
		now:      time.Now,
	}
}

// AlertOps sends an alert about orderID to the operations mailbox. An alert
// that cannot be delivered is queued for RedeliverPending; the returned error
// is non-nil only when it could be neither sent nor queued.
func (d *Dispatcher) AlertOps(ctx context.Context, orderID int64, title, detail string) error {
	log := logger.FromContext(ctx)
	alert := domain.OpsAlert{
		OrderID: orderID,
		Title:   title,
		Detail:  detail,
		At:      d.now(),
	}

	sendErr := d.send(ctx, alert)
	if sendErr == nil {
		log.Info("Operations alerted", zap.String("title", title))
		return nil
	}

	if err := d.outbox.Push(ctx, alert); err != nil {
		log.Error("Operations alert lost", zap.String("title", title), zap.Error(sendErr), zap.NamedError("queue_error", err))
		return errors.Join(sendErr, err)
	}

	log.Warn("Operations alert queued for redelivery", zap.String("title", title), zap.Error(sendErr))
	return nil
}

// RedeliverPending resends the oldest queued alert. found is false when the
// outbox is empty. A failed resend puts the alert back at the end of the queue.
func (d *Dispatcher) RedeliverPending(ctx context.Context) (orderID int64, found bool, err error) {
	alert, err := d.outbox.Pop(ctx)
	if err != nil || alert == nil {
		return 0, false, err
	}

	ctx = logger.WithOrderID(ctx, alert.OrderID)
	if sendErr := d.send(ctx, *alert); sendErr != nil {
		if err := d.outbox.Push(ctx, *alert); err != nil {
			logger.FromContext(ctx).Error("Operations alert lost", zap.String("title", alert.Title), zap.Error(err))
			return alert.OrderID, true, errors.Join(sendErr, err)
		}
		return alert.OrderID, true, sendErr
	}

	logger.FromContext(ctx).Info("Queued operations alert delivered",
		zap.String("title", alert.Title),
		zap.Duration("delay", d.now().Sub(alert.At)),
	)
	return alert.OrderID, true, nil
}

// RequestDecision asks a dealer to accept or decline an international order.
func (d *Dispatcher) RequestDecision(ctx context.Context, to string, req domain.DealerRequest) error {
	msg, err := domain.NewDealerRequest(to, req)
	if err != nil {
		return err
	}
	return d.notifier.Send(ctx, msg)
}

func (d *Dispatcher) send(ctx context.Context, alert domain.OpsAlert) error {
	msg, err := domain.NewOpsAlert(d.opsEmail, alert)
	if err != nil {
		return err
	}
	return d.notifier.Send(ctx, msg)
}
