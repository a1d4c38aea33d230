package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/core/retry"
	"pronto-sync/internal/core/worktime"
	"pronto-sync/internal/features/orders/domain"
	"pronto-sync/internal/features/orders/ports"
	pronto "pronto-sync/internal/features/pronto/domain"
	prontoports "pronto-sync/internal/features/pronto/ports"

	"go.uber.org/zap"
)

const (
	// RetryInterval is the minimum time between two shipment lookups of one order.
	RetryInterval = time.Hour
	// TimeoutWorkingHours is how many working hours an order may wait for a consignment.
	TimeoutWorkingHours = 48

	candidateScanLimit = 50
)

var trackingPolicy = retry.Policy{Interval: RetryInterval}

// Alerter escalates an order to the operations mailbox.
type Alerter interface {
	AlertOps(ctx context.Context, orderID int64, title, detail string) error
}

// Tracker runs the shipment sub-flow of numbered orders.
type Tracker struct {
	store      ports.OrderStore
	storefront ports.StoreFront
	client     prontoports.Client
	alerts     Alerter
	window     worktime.Window
	defaultEnv pronto.Environment
	now        func() time.Time
}

// NewTracker creates a new Tracker.
func NewTracker(
	store ports.OrderStore,
	storefront ports.StoreFront,
	client prontoports.Client,
	alerts Alerter,
	window worktime.Window,
	defaultEnv pronto.Environment,
) *Tracker {
	return &Tracker{
		store:      store,
		storefront: storefront,
		client:     client,
		alerts:     alerts,
		window:     window,
		defaultEnv: defaultEnv,
		now:        time.Now,
	}
}

// PollNext polls the oldest actionable order awaiting a shipment.
// found is false when no order needs attention right now.
func (t *Tracker) PollNext(ctx context.Context) (orderID int64, found bool, err error) {
	orderID, found, err = t.NextCandidate(ctx)
	if err != nil || !found {
		return orderID, found, err
	}
	_, err = t.Poll(ctx, orderID)
	return orderID, true, err
}

// NextCandidate returns the oldest order awaiting a shipment that is due for
// a lookup or has run out of time. Nothing is due outside the processing window.
func (t *Tracker) NextCandidate(ctx context.Context) (int64, bool, error) {
	now := t.now()
	if !t.window.Contains(now) {
		return 0, false, nil
	}

	ids, err := t.store.AwaitingShipment(ctx, candidateScanLimit)
	if err != nil {
		return 0, false, err
	}

	for _, id := range ids {
		meta, err := t.store.GetMeta(ctx, id)
		if err != nil {
			return 0, false, err
		}
		if !meta.AwaitingShipment() {
			continue
		}
		if t.timedOut(meta, now) {
			return id, true, nil
		}
		if !trackingPolicy.Due(meta.Shipment.Tracking, now) {
			continue
		}
		inWindow, err := t.withinSelectionWindow(ctx, id, now)
		if err != nil {
			return 0, false, err
		}
		if inWindow {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// Poll advances the shipment sub-flow of one order by at most one lookup.
func (t *Tracker) Poll(ctx context.Context, orderID int64) (retry.Outcome, error) {
	ctx = logger.WithOrderID(ctx, orderID)
	log := logger.FromContext(ctx)

	meta, err := t.store.GetMeta(ctx, orderID)
	if err != nil {
		return retry.Skipped, err
	}
	if !meta.AwaitingShipment() {
		return retry.Skipped, fmt.Errorf("%w: order %d is %s", apperror.ErrNotEligible, orderID, meta.ShipmentState())
	}

	now := t.now()
	if !t.window.Contains(now) {
		return retry.Skipped, nil
	}

	if t.timedOut(meta, now) {
		return retry.Exhausted, t.timeout(ctx, orderID, meta, now)
	}

	inWindow, err := t.withinSelectionWindow(ctx, orderID, now)
	if err != nil || !inWindow {
		return retry.Skipped, err
	}

	var ref *pronto.TrackingRef
	counter := meta.Shipment.Tracking
	outcome, err := trackingPolicy.Attempt(&counter, now, func() error {
		var lookupErr error
		ref, lookupErr = t.client.FetchShipment(ctx, t.environment(meta), meta.Submission.OrderNumber)
		if lookupErr != nil {
			return lookupErr
		}
		return t.storefront.AddShipmentTracking(ctx, orderID, ref.Carrier, ref.ConsignmentNote)
	})

	var transport *apperror.TransportError
	if errors.As(err, &transport) {
		log.Warn("Shipment lookup unreachable, attempt not counted", zap.Error(err))
		return retry.Skipped, err
	}
	meta.Shipment.Tracking = counter

	switch outcome {
	case retry.Succeeded:
		meta.Shipment.Number = ref.ConsignmentNote
		meta.Shipment.Carrier = ref.Carrier
		meta.Shipment.Tracking.Reset()
		if err := t.store.SaveMeta(ctx, orderID, meta); err != nil {
			return retry.Skipped, err
		}
		log.Info("Shipment recorded",
			zap.String("shipment_number", ref.ConsignmentNote),
			zap.String("carrier", ref.Carrier),
		)
		t.sideEffect(ctx, "update_status", t.storefront.UpdateStatus(ctx, orderID, domain.OrderStatusCompleted))
		t.sideEffect(ctx, "add_note", t.storefront.AddNote(ctx, orderID,
			fmt.Sprintf("Shipped with %s, consignment %s.", ref.Carrier, ref.ConsignmentNote)))
		return outcome, nil

	case retry.Retrying:
		if err := t.store.SaveMeta(ctx, orderID, meta); err != nil {
			return retry.Skipped, err
		}
		log.Info("Shipment not available yet",
			zap.Int("attempt", meta.Shipment.Tracking.Attempts),
			zap.Error(err),
		)
		return outcome, err
	}

	return outcome, nil
}

// timedOut reports whether TimeoutWorkingHours full working hours have passed
// since tracking started. Hours are counted whole, so the limit is exceeded
// as soon as the last of them completes.
func (t *Tracker) timedOut(meta *domain.Meta, now time.Time) bool {
	return t.window.ElapsedHours(meta.Shipment.TrackingStart, now) >= TimeoutWorkingHours
}

// timeout alerts operations once. The flag is only persisted after the alert
// went out, so a failed delivery is retried at the next opportunity.
func (t *Tracker) timeout(ctx context.Context, orderID int64, meta *domain.Meta, now time.Time) error {
	log := logger.FromContext(ctx)
	hours := t.window.ElapsedHours(meta.Shipment.TrackingStart, now)

	detail := fmt.Sprintf("No consignment for Pronto order %s after %d working hours (%d lookups).",
		meta.Submission.OrderNumber, hours, meta.Shipment.Tracking.Attempts)
	if err := t.alerts.AlertOps(ctx, orderID, "Shipment tracking timed out", detail); err != nil {
		return err
	}

	meta.Shipment.TimedOut = true
	meta.Shipment.Tracking.Reset()
	if err := t.store.SaveMeta(ctx, orderID, meta); err != nil {
		return err
	}

	log.Warn("Shipment tracking timed out", zap.Int("working_hours", hours))
	t.sideEffect(ctx, "add_note", t.storefront.AddNote(ctx, orderID, detail))
	return nil
}

func (t *Tracker) withinSelectionWindow(ctx context.Context, orderID int64, now time.Time) (bool, error) {
	order, err := t.store.GetOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	return now.Sub(order.CreatedAt) <= domain.ShipmentSelectionWindow, nil
}

func (t *Tracker) environment(meta *domain.Meta) pronto.Environment {
	if meta.Environment != "" {
		return pronto.Environment(meta.Environment)
	}
	return t.defaultEnv
}

func (t *Tracker) sideEffect(ctx context.Context, action string, err error) {
	if err != nil {
		logger.FromContext(ctx).Warn("Storefront update failed", zap.String("action", action), zap.Error(err))
	}
}
