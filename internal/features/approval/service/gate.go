package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/config"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/core/retry"
	"pronto-sync/internal/features/approval/domain"
	approvalports "pronto-sync/internal/features/approval/ports"
	notifications "pronto-sync/internal/features/notifications/domain"
	orders "pronto-sync/internal/features/orders/domain"
	"pronto-sync/internal/features/orders/ports"

	"go.uber.org/zap"
)

var notificationPolicy = retry.Policy{
	MaxAttempts: orders.NotificationMaxAttempts,
	Interval:    orders.NotificationRetryInterval,
}

// Submitter re-admits an order into the Pronto sync pipeline.
type Submitter interface {
	Submit(ctx context.Context, orderID int64) (orders.SyncState, error)
}

// Dispatcher delivers dealer requests and operations alerts.
type Dispatcher interface {
	RequestDecision(ctx context.Context, to string, req notifications.DealerRequest) error
	AlertOps(ctx context.Context, orderID int64, title, detail string) error
}

// Gate is the international approval gate. Domestic orders pass straight
// through; international orders wait for a dealer or for the decision timer.
type Gate struct {
	store      ports.OrderStore
	locker     ports.OrderLocker
	storefront ports.StoreFront
	dispatcher Dispatcher
	signer     *domain.TokenSigner
	ledger     approvalports.TokenLedger
	submitter  Submitter

	domestic      string
	dealers       map[string]string
	defaultDealer string
	publicURL     string

	now func() time.Time
}

// NewGate creates a new Gate.
func NewGate(
	cfg config.ApprovalConfig,
	store ports.OrderStore,
	locker ports.OrderLocker,
	storefront ports.StoreFront,
	dispatcher Dispatcher,
	signer *domain.TokenSigner,
	ledger approvalports.TokenLedger,
	submitter Submitter,
) *Gate {
	return &Gate{
		store:         store,
		locker:        locker,
		storefront:    storefront,
		dispatcher:    dispatcher,
		signer:        signer,
		ledger:        ledger,
		submitter:     submitter,
		domestic:      strings.ToUpper(strings.TrimSpace(cfg.DomesticCountry)),
		dealers:       cfg.DealerAddressBook(),
		defaultDealer: strings.TrimSpace(cfg.DealerDefaultEmail),
		publicURL:     strings.TrimRight(cfg.PublicURL, "/"),
		now:           time.Now,
	}
}

// Evaluate classifies a processing order. Only the first call decides; later
// calls report the stored decision.
func (g *Gate) Evaluate(ctx context.Context, order *orders.Order) (bool, error) {
	ctx = logger.WithOrderID(ctx, order.ID)
	log := logger.FromContext(ctx)

	unlock, err := g.locker.Lock(ctx, order.ID)
	if err != nil {
		return false, err
	}
	defer unlock()

	meta, err := g.store.GetMeta(ctx, order.ID)
	if err != nil {
		return false, err
	}
	if meta.Gate.Evaluated {
		return meta.Admitted(), nil
	}

	now := g.now()
	country := order.DestinationCountry()
	meta.Gate.Evaluated = true
	meta.Gate.Country = country
	meta.Gate.IsInternational = country != "" && country != g.domestic

	if !meta.Gate.IsInternational {
		if err := g.store.SaveMeta(ctx, order.ID, meta); err != nil {
			return false, err
		}
		log.Debug("Domestic order admitted", zap.String("country", country))
		return true, nil
	}

	meta.Gate.PreventSync = true
	meta.Gate.DecisionDeadline = now.Add(orders.DecisionWindow)
	meta.Gate.DealerEmail = g.dealerFor(country)
	if err := g.store.SaveMeta(ctx, order.ID, meta); err != nil {
		return false, err
	}
	log.Info("International order held for dealer decision",
		zap.String("country", country),
		zap.String("dealer_email", meta.Gate.DealerEmail),
		zap.Time("decision_deadline", meta.Gate.DecisionDeadline),
	)

	if meta.Gate.DealerEmail == "" {
		return false, g.fail(ctx, order.ID, meta, fmt.Sprintf("no dealer address configured for %s", country))
	}
	return false, g.notifyDealer(ctx, order, meta)
}

// HandleAction records a dealer's answer carried by a signed link.
func (g *Gate) HandleAction(ctx context.Context, orderID int64, action domain.Action, token string) (orders.GateState, error) {
	if orderID <= 0 {
		return "", apperror.Validation("invalid order id %d", orderID)
	}
	ctx = logger.WithOrderID(ctx, orderID)
	log := logger.FromContext(ctx)

	claims, err := g.signer.Verify(token, orderID, action)
	if err != nil {
		log.Warn("Rejected dealer action", zap.String("action", string(action)), zap.Error(err))
		return "", err
	}

	state, release, err := g.decide(ctx, orderID, action, claims)
	if err != nil {
		return state, err
	}
	if release != "" {
		g.resubmit(ctx, orderID, release)
	}
	return state, nil
}

// decide records the dealer answer under the order lock. A decline returns the
// response the order was released with so it is resubmitted after unlocking.
func (g *Gate) decide(ctx context.Context, orderID int64, action domain.Action, claims *domain.ActionClaims) (orders.GateState, orders.DealerResponse, error) {
	log := logger.FromContext(ctx)

	unlock, err := g.locker.Lock(ctx, orderID)
	if err != nil {
		return "", "", err
	}
	defer unlock()

	meta, err := g.store.GetMeta(ctx, orderID)
	if err != nil {
		return "", "", err
	}

	now := g.now()
	switch state := meta.GateState(); {
	case state == orders.GateAccepted || state == orders.GateDeclined || state == orders.GateTimedOut:
		return state, "", fmt.Errorf("%w: order %d was already %s", apperror.ErrAlreadyProcessed, orderID, state)
	case state != orders.GateAwaitingDealer:
		return state, "", fmt.Errorf("%w: order %d is not awaiting a dealer decision", apperror.ErrNotEligible, orderID)
	case !now.Before(meta.Gate.DecisionDeadline):
		return state, "", fmt.Errorf("%w: decision window for order %d has closed", apperror.ErrNotEligible, orderID)
	}

	fresh, err := g.ledger.Consume(ctx, claims.ID, claims.ExpiresAt.Sub(now))
	if err != nil {
		return "", "", err
	}
	if !fresh {
		return meta.GateState(), "", fmt.Errorf("%w: link already used", apperror.ErrInvalidToken)
	}

	var release orders.DealerResponse
	switch action {
	case domain.ActionAccept:
		meta.Gate.DealerResponse = orders.DealerResponseAccepted
		meta.Gate.ShippingDeadline = now.Add(orders.DealerShippingWindow)
		err = g.store.SaveMeta(ctx, orderID, meta)
	case domain.ActionDecline:
		release, err = g.release(ctx, orderID, meta, orders.DealerResponseDeclined)
	}
	if err != nil {
		// The decision was not recorded; the link stays usable.
		if releaseErr := g.ledger.Release(ctx, claims.ID); releaseErr != nil {
			log.Error("Failed to release dealer action token", zap.Error(releaseErr))
		}
		return "", "", err
	}

	switch action {
	case domain.ActionAccept:
		log.Info("Dealer accepted order", zap.Time("shipping_deadline", meta.Gate.ShippingDeadline))
		g.sideEffect(ctx, "add_note", g.storefront.AddNote(ctx, orderID,
			fmt.Sprintf("Dealer %s accepted the order and ships it directly.", meta.Gate.DealerEmail)))
	case domain.ActionDecline:
		log.Info("Dealer declined order")
	}
	return meta.GateState(), release, nil
}

// Sweep handles the earliest due gate timer or notification retry.
// found is false when nothing is due.
func (g *Gate) Sweep(ctx context.Context) (orderID int64, found bool, err error) {
	ids, err := g.store.GateWatch(ctx, g.now(), 1)
	if err != nil || len(ids) == 0 {
		return 0, false, err
	}
	return ids[0], true, g.Check(ctx, ids[0])
}

// Check advances the timers of one order. Running it twice is harmless.
func (g *Gate) Check(ctx context.Context, orderID int64) error {
	ctx = logger.WithOrderID(ctx, orderID)

	release, err := g.check(ctx, orderID)
	if release != "" {
		g.resubmit(ctx, orderID, release)
	}
	return err
}

func (g *Gate) check(ctx context.Context, orderID int64) (orders.DealerResponse, error) {
	unlock, err := g.locker.Lock(ctx, orderID)
	if err != nil {
		return "", err
	}
	defer unlock()

	meta, err := g.store.GetMeta(ctx, orderID)
	if err != nil {
		return "", err
	}

	now := g.now()
	switch meta.GateState() {
	case orders.GateAwaitingDealer:
		if !now.Before(meta.Gate.DecisionDeadline) {
			logger.FromContext(ctx).Info("Dealer decision timed out")
			return g.release(ctx, orderID, meta, orders.DealerResponseTimeout)
		}
		if meta.Gate.DealerEmail == "" {
			return "", g.fail(ctx, orderID, meta, fmt.Sprintf("no dealer address configured for %s", meta.Gate.Country))
		}
		if !meta.Gate.DealerNotified {
			order, err := g.store.GetOrder(ctx, orderID)
			if err != nil {
				return "", err
			}
			return "", g.notifyDealer(ctx, order, meta)
		}

	case orders.GateAccepted:
		if meta.Gate.ShippingAlertSent || now.Before(meta.Gate.ShippingDeadline) {
			return "", nil
		}
		detail := fmt.Sprintf("Dealer %s accepted the order on behalf of %s but the %s shipping window has elapsed.",
			meta.Gate.DealerEmail, meta.Gate.Country, orders.DealerShippingWindow)
		if err := g.dispatcher.AlertOps(ctx, orderID, "Dealer shipment overdue", detail); err != nil {
			return "", err
		}
		meta.Gate.ShippingAlertSent = true
		return "", g.store.SaveMeta(ctx, orderID, meta)
	}

	return "", nil
}

// release clears the diversion and persists the readmission. It returns the
// response to resubmit with, or "" when the order was already readmitted.
func (g *Gate) release(ctx context.Context, orderID int64, meta *orders.Meta, response orders.DealerResponse) (orders.DealerResponse, error) {
	if meta.Gate.Readmitted {
		return "", nil
	}

	meta.Gate.DealerResponse = response
	meta.Gate.PreventSync = false
	meta.Gate.Readmitted = true
	if err := g.store.SaveMeta(ctx, orderID, meta); err != nil {
		return "", err
	}

	g.sideEffect(ctx, "add_note", g.storefront.AddNote(ctx, orderID,
		fmt.Sprintf("Dealer decision: %s. Order released to Pronto.", response)))
	return response, nil
}

// resubmit hands a released order to the sync pipeline. It runs outside the
// order lock since Submit takes it. The readmission is already persisted, so
// a failure here is escalated for a manual sync instead of being retried.
func (g *Gate) resubmit(ctx context.Context, orderID int64, response orders.DealerResponse) {
	log := logger.FromContext(ctx)

	state, err := g.submitter.Submit(ctx, orderID)
	switch {
	case errors.Is(err, apperror.ErrAlreadyProcessed):
		log.Info("Readmitted order was already submitted")
	case err != nil:
		log.Error("Readmitted order could not be submitted", zap.Error(err))
		detail := fmt.Sprintf("Order was released to Pronto after dealer decision %q but the submission failed: %v. Run a manual sync.",
			response, err)
		g.sideEffect(ctx, "add_note", g.storefront.AddNote(ctx, orderID, "Pronto submission failed after dealer decision: "+err.Error()))
		if alertErr := g.dispatcher.AlertOps(ctx, orderID, "Readmitted order not submitted", detail); alertErr != nil {
			log.Error("Failed readmission could not be escalated", zap.Error(alertErr))
		}
	default:
		log.Info("Order readmitted to sync pipeline",
			zap.String("dealer_response", string(response)),
			zap.String("sync_state", string(state)),
		)
	}
}

// notifyDealer makes one guarded delivery attempt of the dealer request.
func (g *Gate) notifyDealer(ctx context.Context, order *orders.Order, meta *orders.Meta) error {
	log := logger.FromContext(ctx)
	now := g.now()

	outcome, err := notificationPolicy.Attempt(&meta.Gate.Notification, now, func() error {
		req, err := g.dealerRequest(order, meta)
		if err != nil {
			return err
		}
		return g.dispatcher.RequestDecision(ctx, meta.Gate.DealerEmail, req)
	})

	switch outcome {
	case retry.Succeeded:
		meta.Gate.DealerNotified = true
		meta.Gate.Notification.Reset()
		if err := g.store.SaveMeta(ctx, order.ID, meta); err != nil {
			return err
		}
		log.Info("Dealer notified", zap.String("dealer_email", meta.Gate.DealerEmail))
		g.sideEffect(ctx, "add_note", g.storefront.AddNote(ctx, order.ID,
			fmt.Sprintf("Awaiting decision from dealer %s until %s.",
				meta.Gate.DealerEmail, meta.Gate.DecisionDeadline.Format(time.RFC1123))))

	case retry.Retrying:
		log.Warn("Dealer notification failed, will retry",
			zap.Int("attempt", meta.Gate.Notification.Attempts),
			zap.Error(err),
		)
		return g.store.SaveMeta(ctx, order.ID, meta)

	case retry.Exhausted:
		return g.fail(ctx, order.ID, meta,
			fmt.Sprintf("dealer notification failed after %d attempts: %v", meta.Gate.Notification.Attempts, err))
	}
	return nil
}

// fail takes the order out of every automatic flow and escalates it.
func (g *Gate) fail(ctx context.Context, orderID int64, meta *orders.Meta, reason string) error {
	logger.FromContext(ctx).Error("Approval gate failed", zap.String("reason", reason))

	meta.SyncError = reason
	if err := g.store.SaveMeta(ctx, orderID, meta); err != nil {
		return err
	}

	g.sideEffect(ctx, "update_status", g.storefront.UpdateStatus(ctx, orderID, orders.OrderStatusFailed))
	g.sideEffect(ctx, "add_note", g.storefront.AddNote(ctx, orderID, "International approval failed: "+reason))
	if err := g.dispatcher.AlertOps(ctx, orderID, "International approval failed", reason); err != nil {
		logger.FromContext(ctx).Error("Approval failure could not be escalated", zap.Error(err))
		return err
	}
	return nil
}

func (g *Gate) dealerRequest(order *orders.Order, meta *orders.Meta) (notifications.DealerRequest, error) {
	deadline := meta.Gate.DecisionDeadline
	acceptURL, err := g.actionURL(order.ID, domain.ActionAccept, deadline)
	if err != nil {
		return notifications.DealerRequest{}, err
	}
	declineURL, err := g.actionURL(order.ID, domain.ActionDecline, deadline)
	if err != nil {
		return notifications.DealerRequest{}, err
	}

	ship := order.Shipping
	address := make([]string, 0, 4)
	for _, line := range []string{
		ship.Company,
		ship.Address1,
		ship.Address2,
		strings.TrimSpace(strings.Join([]string{ship.City, ship.State, ship.Postcode}, " ")),
		meta.Gate.Country,
	} {
		if line = strings.TrimSpace(line); line != "" {
			address = append(address, line)
		}
	}

	items := make([]notifications.DealerItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, notifications.DealerItem{Name: item.Name, SKU: item.SKU, Quantity: item.Quantity})
	}

	return notifications.DealerRequest{
		OrderID:    order.ID,
		Country:    meta.Gate.Country,
		Customer:   ship.FullName(),
		Address:    address,
		Items:      items,
		AcceptURL:  acceptURL,
		DeclineURL: declineURL,
		Deadline:   deadline,
	}, nil
}

func (g *Gate) actionURL(orderID int64, action domain.Action, expiresAt time.Time) (string, error) {
	token, err := g.signer.Sign(orderID, action, expiresAt)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/dealer/orders/%d/%s?token=%s", g.publicURL, orderID, action, url.QueryEscape(token)), nil
}

func (g *Gate) dealerFor(country string) string {
	if addr, ok := g.dealers[country]; ok {
		return addr
	}
	return g.defaultDealer
}

func (g *Gate) sideEffect(ctx context.Context, action string, err error) {
	if err != nil {
		logger.FromContext(ctx).Warn("Storefront update failed", zap.String("action", action), zap.Error(err))
	}
}
