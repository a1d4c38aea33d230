package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/core/retry"
	"pronto-sync/internal/features/orders/domain"
	"pronto-sync/internal/features/orders/ports"
	pronto "pronto-sync/internal/features/pronto/domain"
	prontoports "pronto-sync/internal/features/pronto/ports"

	"go.uber.org/zap"
)

// numberFetchPolicy bounds automatic number polling. The delay after submit
// is enforced by eligibility, not by the interval.
var numberFetchPolicy = retry.Policy{MaxAttempts: domain.MaxFetchAttempts}

// Alerter escalates an order to the operations mailbox.
type Alerter interface {
	AlertOps(ctx context.Context, orderID int64, title, detail string) error
}

// Orchestrator drives the sync phase: Unsynced, Submitted, Numbered.
type Orchestrator struct {
	store      ports.OrderStore
	locker     ports.OrderLocker
	storefront ports.StoreFront
	client     prontoports.Client
	formatter  *pronto.Formatter
	alerts     Alerter
	defaultEnv pronto.Environment
	now        func() time.Time
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	store ports.OrderStore,
	locker ports.OrderLocker,
	storefront ports.StoreFront,
	client prontoports.Client,
	formatter *pronto.Formatter,
	alerts Alerter,
	defaultEnv pronto.Environment,
) *Orchestrator {
	return &Orchestrator{
		store:      store,
		locker:     locker,
		storefront: storefront,
		client:     client,
		formatter:  formatter,
		alerts:     alerts,
		defaultEnv: defaultEnv,
		now:        time.Now,
	}
}

// Submit sends the order to Pronto once. An order that already carries a
// transaction id is rejected with ErrAlreadyProcessed before any remote call.
// Orders held by the approval gate report SyncSkipped without error.
func (o *Orchestrator) Submit(ctx context.Context, orderID int64) (domain.SyncState, error) {
	if orderID <= 0 {
		return "", apperror.Validation("invalid order id %d", orderID)
	}
	ctx = logger.WithOrderID(ctx, orderID)
	log := logger.FromContext(ctx)

	unlock, err := o.locker.Lock(ctx, orderID)
	if err != nil {
		return "", err
	}
	defer unlock()

	meta, err := o.store.GetMeta(ctx, orderID)
	if err != nil {
		return "", err
	}
	if meta.Submission != nil {
		return meta.SyncState(), fmt.Errorf("%w: order %d already has Pronto transaction %s",
			apperror.ErrAlreadyProcessed, orderID, meta.Submission.TransactionUUID)
	}
	if meta.Gate.PreventSync {
		log.Info("Order held by approval gate, sync skipped")
		return domain.SyncSkipped, nil
	}

	order, err := o.store.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	env := o.environment(meta)
	payload := o.formatter.Format(order, strconv.FormatInt(orderID, 10))

	txn, err := o.client.Submit(ctx, env, payload)
	if err != nil {
		log.Warn("Pronto submit failed", zap.Error(err), zap.Bool("retryable", apperror.IsRetryable(err)))
		return meta.SyncState(), err
	}

	meta.Submission = &domain.Submission{TransactionUUID: txn, SyncedAt: o.now()}
	meta.Environment = string(env)
	meta.FetchRetry.Reset()
	meta.SyncError = ""
	if err := o.store.SaveMeta(ctx, orderID, meta); err != nil {
		// Pronto holds the order without a local record.
		log.Error("Failed to persist Pronto transaction", zap.String("transaction_uuid", txn), zap.Error(err))
		return "", err
	}

	log.Info("Order submitted to Pronto", zap.String("transaction_uuid", txn), zap.String("environment", string(env)))

	o.sideEffect(ctx, "update_status", o.storefront.UpdateStatus(ctx, orderID, domain.OrderStatusProntoReceived))
	o.sideEffect(ctx, "add_note", o.storefront.AddNote(ctx, orderID,
		fmt.Sprintf("Order sent to Pronto (%s). Transaction %s.", env, txn)))

	return domain.SyncSubmitted, nil
}

// FetchNumber polls Pronto for the order number of an eligible order.
func (o *Orchestrator) FetchNumber(ctx context.Context, orderID int64) (retry.Outcome, error) {
	return o.fetchNumber(ctx, orderID, false)
}

func (o *Orchestrator) fetchNumber(ctx context.Context, orderID int64, manual bool) (retry.Outcome, error) {
	if orderID <= 0 {
		return retry.Skipped, apperror.Validation("invalid order id %d", orderID)
	}
	ctx = logger.WithOrderID(ctx, orderID)
	log := logger.FromContext(ctx)

	unlock, err := o.locker.Lock(ctx, orderID)
	if err != nil {
		return retry.Skipped, err
	}
	defer unlock()

	meta, err := o.store.GetMeta(ctx, orderID)
	if err != nil {
		return retry.Skipped, err
	}

	now := o.now()
	policy := numberFetchPolicy
	switch {
	case meta.Submission == nil:
		return retry.Skipped, fmt.Errorf("%w: order %d was not submitted to Pronto", apperror.ErrNotEligible, orderID)
	case meta.Submission.Numbered():
		return retry.Skipped, fmt.Errorf("%w: order %d already has Pronto number %s",
			apperror.ErrAlreadyProcessed, orderID, meta.Submission.OrderNumber)
	case manual:
		policy.MaxAttempts = 0
	case !meta.AwaitingNumber(now):
		return retry.Skipped, fmt.Errorf("%w: order %d is not due for number polling", apperror.ErrNotEligible, orderID)
	}

	// Transport failures never reached Pronto and are not counted.
	counter := meta.FetchRetry
	var number string
	outcome, err := policy.Attempt(&counter, now, func() error {
		var fetchErr error
		number, fetchErr = o.client.FetchOrderNumber(ctx, pronto.Environment(meta.Environment), meta.Submission.TransactionUUID)
		return fetchErr
	})

	var transport *apperror.TransportError
	if errors.As(err, &transport) {
		log.Warn("Pronto unreachable, number fetch not counted", zap.Error(err))
		return retry.Skipped, err
	}
	meta.FetchRetry = counter

	switch outcome {
	case retry.Succeeded:
		meta.Submission.OrderNumber = number
		meta.FetchRetry.Reset()
		meta.Shipment.TrackingStart = now
		if saveErr := o.store.SaveMeta(ctx, orderID, meta); saveErr != nil {
			return retry.Skipped, saveErr
		}
		log.Info("Pronto order number received", zap.String("pronto_order_number", number))
		o.sideEffect(ctx, "add_note", o.storefront.AddNote(ctx, orderID,
			fmt.Sprintf("Pronto order number %s received.", number)))
		return outcome, nil

	case retry.Retrying, retry.Exhausted:
		if saveErr := o.store.SaveMeta(ctx, orderID, meta); saveErr != nil {
			return retry.Skipped, saveErr
		}
		log.Warn("Pronto order number not available",
			zap.Int("attempt", meta.FetchRetry.Attempts),
			zap.String("outcome", outcome.String()),
			zap.Error(err),
		)
		if outcome == retry.Exhausted {
			if alertErr := o.abandon(ctx, orderID, meta, err); alertErr != nil {
				return outcome, errors.Join(err, alertErr)
			}
		}
		return outcome, err
	}
	return outcome, nil
}

// abandon escalates an order whose number never arrived. The submission is kept.
// It returns the alert error when operations could not be told.
func (o *Orchestrator) abandon(ctx context.Context, orderID int64, meta *domain.Meta, cause error) error {
	log := logger.FromContext(ctx)
	log.Error("Giving up on Pronto order number",
		zap.String("transaction_uuid", meta.Submission.TransactionUUID),
		zap.Int("attempts", meta.FetchRetry.Attempts),
	)

	detail := fmt.Sprintf("Pronto did not return an order number for transaction %s after %d attempts.",
		meta.Submission.TransactionUUID, meta.FetchRetry.Attempts)
	if cause != nil && !errors.Is(cause, pronto.ErrNotReady) {
		detail += " Last error: " + cause.Error()
	}

	o.sideEffect(ctx, "add_note", o.storefront.AddNote(ctx, orderID, detail))
	if err := o.alerts.AlertOps(ctx, orderID, "Pronto order number never received", detail); err != nil {
		log.Error("Abandoned order could not be escalated", zap.Error(err))
		return err
	}
	return nil
}

// ManualSync is the administrator re-entry to Submit. Unlike the automatic path
// it imports the order when missing and treats a held order as an error.
func (o *Orchestrator) ManualSync(ctx context.Context, orderID int64) (domain.SyncState, error) {
	if orderID <= 0 {
		return "", apperror.Validation("invalid order id %d", orderID)
	}
	if _, err := o.store.GetOrder(ctx, orderID); errors.Is(err, apperror.ErrNotFound) {
		order, fetchErr := o.storefront.GetOrder(ctx, orderID)
		if fetchErr != nil {
			return "", fetchErr
		}
		if err := o.store.SaveOrder(ctx, order); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	state, err := o.Submit(ctx, orderID)
	if err != nil {
		return state, err
	}
	if state == domain.SyncSkipped {
		return state, fmt.Errorf("%w: order %d is waiting for a dealer decision", apperror.ErrNotEligible, orderID)
	}
	return state, nil
}

// ManualFetch polls the order number now, ignoring the post-submit delay and the attempt cap.
func (o *Orchestrator) ManualFetch(ctx context.Context, orderID int64) (retry.Outcome, error) {
	return o.fetchNumber(ctx, orderID, true)
}

func (o *Orchestrator) environment(meta *domain.Meta) pronto.Environment {
	if meta.Environment != "" {
		return pronto.Environment(meta.Environment)
	}
	return o.defaultEnv
}

// sideEffect logs a failed storefront update. The sync state is already persisted.
func (o *Orchestrator) sideEffect(ctx context.Context, action string, err error) {
	if err != nil {
		logger.FromContext(ctx).Warn("Storefront update failed", zap.String("action", action), zap.Error(err))
	}
}
