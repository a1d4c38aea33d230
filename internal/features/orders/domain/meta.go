package domain

import (
	"time"

	"pronto-sync/internal/core/retry"
)

// MaxFetchAttempts bounds number-fetch polling per order.
const MaxFetchAttempts = 10

// NumberFetchDelay is how long after submit an order becomes eligible for number polling.
const NumberFetchDelay = 120 * time.Second

// ShipmentSelectionWindow limits remote shipment lookups to recently created orders.
const ShipmentSelectionWindow = 72 * time.Hour

// Approval gate timers and notification retry bounds.
const (
	DecisionWindow            = 48 * time.Hour
	DealerShippingWindow      = 48 * time.Hour
	NotificationMaxAttempts   = 3
	NotificationRetryInterval = 30 * time.Second
)

// DealerResponse is the outcome of the international dealer workflow.
type DealerResponse string

const (
	DealerResponseNone     DealerResponse = ""
	DealerResponseAccepted DealerResponse = "accepted"
	DealerResponseDeclined DealerResponse = "declined"
	DealerResponseTimeout  DealerResponse = "timeout"
)

// Submission exists once Pronto accepted the order. The order number can only
// live inside a submission, so a number without a transaction is unrepresentable.
type Submission struct {
	TransactionUUID string
	SyncedAt        time.Time
	OrderNumber     string
}

// Numbered reports whether Pronto assigned an order number.
func (s *Submission) Numbered() bool {
	return s != nil && s.OrderNumber != ""
}

// Shipment is the bookkeeping of the shipment sub-flow.
type Shipment struct {
	Number        string
	Carrier       string
	TrackingStart time.Time
	Tracking      retry.Counter
	TimedOut      bool
}

// Gate is the bookkeeping of the international approval gate.
type Gate struct {
	Evaluated         bool
	IsInternational   bool
	PreventSync       bool
	Country           string
	DealerEmail       string
	DealerResponse    DealerResponse
	DecisionDeadline  time.Time
	ShippingDeadline  time.Time
	Notification      retry.Counter
	DealerNotified    bool
	Readmitted        bool
	ShippingAlertSent bool
}

// Meta is the typed sync metadata attached to an order.
type Meta struct {
	Submission  *Submission
	FetchRetry  retry.Counter
	Environment string
	Shipment    Shipment
	Gate        Gate
	SyncError   string
	// Extra carries unrecognised metadata keys untouched.
	Extra map[string]string
}

// SyncState is the state of the main sync phase.
type SyncState string

const (
	SyncUnsynced  SyncState = "unsynced"
	SyncSubmitted SyncState = "submitted"
	SyncNumbered  SyncState = "numbered"
	SyncAbandoned SyncState = "abandoned"
	SyncSkipped   SyncState = "skipped"
	SyncFailed    SyncState = "failed"
)

// SyncState derives the current sync phase state.
func (m *Meta) SyncState() SyncState {
	switch {
	case m.Submission.Numbered():
		return SyncNumbered
	case m.Submission != nil && m.FetchRetry.Attempts >= MaxFetchAttempts:
		return SyncAbandoned
	case m.Submission != nil:
		return SyncSubmitted
	case m.SyncError != "":
		return SyncFailed
	case m.Gate.PreventSync:
		return SyncSkipped
	default:
		return SyncUnsynced
	}
}

// AwaitingNumber reports number-fetch eligibility at now.
func (m *Meta) AwaitingNumber(now time.Time) bool {
	if m.Submission == nil || m.Submission.Numbered() {
		return false
	}
	if m.FetchRetry.Attempts >= MaxFetchAttempts {
		return false
	}
	return !now.Before(m.Submission.SyncedAt.Add(NumberFetchDelay))
}

// ShipmentState is the state of the shipment sub-flow.
type ShipmentState string

const (
	ShipmentNotApplicable ShipmentState = "not_applicable"
	ShipmentPending       ShipmentState = "pending"
	ShipmentShipped       ShipmentState = "shipped"
	ShipmentTimedOut      ShipmentState = "timed_out"
)

// ShipmentState derives the shipment sub-flow state.
func (m *Meta) ShipmentState() ShipmentState {
	switch {
	case m.Shipment.Number != "":
		return ShipmentShipped
	case m.Shipment.TimedOut:
		return ShipmentTimedOut
	case m.Submission.Numbered():
		return ShipmentPending
	default:
		return ShipmentNotApplicable
	}
}

// AwaitingShipment reports whether the order is still in the shipment sub-flow.
func (m *Meta) AwaitingShipment() bool {
	return m.ShipmentState() == ShipmentPending
}

// GateState is the state of the international approval gate.
type GateState string

const (
	GateNew            GateState = "new"
	GateDomestic       GateState = "domestic"
	GateAwaitingDealer GateState = "awaiting_dealer"
	GateAccepted       GateState = "accepted"
	GateDeclined       GateState = "declined"
	GateTimedOut       GateState = "timed_out"
	GateFailed         GateState = "failed"
)

// GateState derives the gate state.
func (m *Meta) GateState() GateState {
	g := m.Gate
	switch {
	case !g.Evaluated:
		return GateNew
	case !g.IsInternational:
		return GateDomestic
	case g.DealerResponse == DealerResponseAccepted:
		return GateAccepted
	case g.DealerResponse == DealerResponseDeclined:
		return GateDeclined
	case g.DealerResponse == DealerResponseTimeout:
		return GateTimedOut
	case m.SyncError != "":
		return GateFailed
	default:
		return GateAwaitingDealer
	}
}

// Admitted reports whether the order may enter the Pronto sync pipeline.
func (m *Meta) Admitted() bool {
	return !m.Gate.PreventSync && m.SyncError == ""
}

// GateDue returns when the approval gate next needs attention.
// ok is false when the gate has nothing left to do.
func (m *Meta) GateDue() (due time.Time, ok bool) {
	g := m.Gate
	switch m.GateState() {
	case GateAwaitingDealer:
		due = g.DecisionDeadline
		if !g.DealerNotified {
			next := g.Notification.LastAttempt.Add(NotificationRetryInterval)
			if g.Notification.LastAttempt.IsZero() {
				next = time.Unix(0, 0)
			}
			if next.Before(due) {
				due = next
			}
		}
		return due, true
	case GateAccepted:
		if g.ShippingAlertSent {
			return time.Time{}, false
		}
		return g.ShippingDeadline, true
	default:
		return time.Time{}, false
	}
}
