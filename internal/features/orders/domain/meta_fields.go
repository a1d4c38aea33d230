package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Metadata keys as stored on the order.
const (
	KeyTransactionUUID          = "transaction_uuid"
	KeySyncTime                 = "sync_time"
	KeyProntoOrderNumber        = "pronto_order_number"
	KeyFetchRetryCount          = "fetch_retry_count"
	KeyLastFetchAttempt         = "last_fetch_attempt"
	KeyProntoEnvironment        = "pronto_environment"
	KeyShipmentNumber           = "shipment_number"
	KeyShipmentCarrier          = "shipment_carrier"
	KeyShipmentTrackingStart    = "shipment_tracking_start"
	KeyShipmentTrackingAttempts = "shipment_tracking_attempts"
	KeyLastTrackingAttempt      = "last_tracking_attempt"
	KeyShipmentTimedOut         = "shipment_timed_out"
	KeyGateEvaluated            = "gate_evaluated"
	KeyIsInternational          = "is_international"
	KeyPreventProntoSync        = "prevent_pronto_sync"
	KeyDestinationCountry       = "destination_country"
	KeyDealerEmail              = "dealer_email"
	KeyDealerResponse           = "dealer_response"
	KeyDecisionTimer            = "decision_timer"
	KeyShippingTimer            = "shipping_timer"
	KeyNotificationAttempts     = "notification_attempts"
	KeyLastNotificationAttempt  = "last_notification_attempt"
	KeyDealerNotified           = "dealer_notified"
	KeyReadmitted               = "readmitted"
	KeyShippingAlertSent        = "shipping_alert_sent"
	KeySyncError                = "sync_error"
)

// ErrCorruptMeta is returned when stored metadata violates a sync invariant.
var ErrCorruptMeta = errors.New("corrupt order metadata")

var knownKeys = map[string]struct{}{
	KeyTransactionUUID: {}, KeySyncTime: {}, KeyProntoOrderNumber: {}, KeyFetchRetryCount: {},
	KeyLastFetchAttempt: {}, KeyProntoEnvironment: {}, KeyShipmentNumber: {}, KeyShipmentCarrier: {},
	KeyShipmentTrackingStart: {}, KeyShipmentTrackingAttempts: {}, KeyLastTrackingAttempt: {},
	KeyShipmentTimedOut: {}, KeyGateEvaluated: {}, KeyIsInternational: {}, KeyPreventProntoSync: {},
	KeyDestinationCountry: {}, KeyDealerEmail: {}, KeyDealerResponse: {}, KeyDecisionTimer: {},
	KeyShippingTimer: {}, KeyNotificationAttempts: {}, KeyLastNotificationAttempt: {},
	KeyDealerNotified: {}, KeyReadmitted: {}, KeyShippingAlertSent: {}, KeySyncError: {},
}

// Fields flattens the metadata into the stored key-value form.
// Absent values are omitted so presence keeps encoding state.
func (m *Meta) Fields() map[string]string {
	f := make(map[string]string)
	for k, v := range m.Extra {
		f[k] = v
	}

	if s := m.Submission; s != nil {
		f[KeyTransactionUUID] = s.TransactionUUID
		putTime(f, KeySyncTime, s.SyncedAt)
		putString(f, KeyProntoOrderNumber, s.OrderNumber)
	}
	putInt(f, KeyFetchRetryCount, m.FetchRetry.Attempts)
	putTime(f, KeyLastFetchAttempt, m.FetchRetry.LastAttempt)
	putString(f, KeyProntoEnvironment, m.Environment)

	putString(f, KeyShipmentNumber, m.Shipment.Number)
	putString(f, KeyShipmentCarrier, m.Shipment.Carrier)
	putTime(f, KeyShipmentTrackingStart, m.Shipment.TrackingStart)
	putInt(f, KeyShipmentTrackingAttempts, m.Shipment.Tracking.Attempts)
	putTime(f, KeyLastTrackingAttempt, m.Shipment.Tracking.LastAttempt)
	putBool(f, KeyShipmentTimedOut, m.Shipment.TimedOut)

	g := m.Gate
	putBool(f, KeyGateEvaluated, g.Evaluated)
	putBool(f, KeyIsInternational, g.IsInternational)
	putBool(f, KeyPreventProntoSync, g.PreventSync)
	putString(f, KeyDestinationCountry, g.Country)
	putString(f, KeyDealerEmail, g.DealerEmail)
	putString(f, KeyDealerResponse, string(g.DealerResponse))
	putTime(f, KeyDecisionTimer, g.DecisionDeadline)
	putTime(f, KeyShippingTimer, g.ShippingDeadline)
	putInt(f, KeyNotificationAttempts, g.Notification.Attempts)
	putTime(f, KeyLastNotificationAttempt, g.Notification.LastAttempt)
	putBool(f, KeyDealerNotified, g.DealerNotified)
	putBool(f, KeyReadmitted, g.Readmitted)
	putBool(f, KeyShippingAlertSent, g.ShippingAlertSent)

	putString(f, KeySyncError, m.SyncError)
	return f
}

// ParseMeta rebuilds metadata from its stored key-value form.
func ParseMeta(f map[string]string) (*Meta, error) {
	p := fieldParser{f: f}
	m := &Meta{}

	if txn := f[KeyTransactionUUID]; txn != "" {
		m.Submission = &Submission{
			TransactionUUID: txn,
			SyncedAt:        p.time(KeySyncTime),
			OrderNumber:     f[KeyProntoOrderNumber],
		}
		if m.Submission.SyncedAt.IsZero() {
			return nil, fmt.Errorf("%w: %s without %s", ErrCorruptMeta, KeyTransactionUUID, KeySyncTime)
		}
	} else if f[KeyProntoOrderNumber] != "" {
		return nil, fmt.Errorf("%w: %s without %s", ErrCorruptMeta, KeyProntoOrderNumber, KeyTransactionUUID)
	}

	m.FetchRetry.Attempts = p.int(KeyFetchRetryCount)
	m.FetchRetry.LastAttempt = p.time(KeyLastFetchAttempt)
	m.Environment = f[KeyProntoEnvironment]

	m.Shipment = Shipment{
		Number:        f[KeyShipmentNumber],
		Carrier:       f[KeyShipmentCarrier],
		TrackingStart: p.time(KeyShipmentTrackingStart),
		TimedOut:      p.bool(KeyShipmentTimedOut),
	}
	m.Shipment.Tracking.Attempts = p.int(KeyShipmentTrackingAttempts)
	m.Shipment.Tracking.LastAttempt = p.time(KeyLastTrackingAttempt)

	m.Gate = Gate{
		Evaluated:         p.bool(KeyGateEvaluated),
		IsInternational:   p.bool(KeyIsInternational),
		PreventSync:       p.bool(KeyPreventProntoSync),
		Country:           f[KeyDestinationCountry],
		DealerEmail:       f[KeyDealerEmail],
		DealerResponse:    DealerResponse(f[KeyDealerResponse]),
		DecisionDeadline:  p.time(KeyDecisionTimer),
		ShippingDeadline:  p.time(KeyShippingTimer),
		DealerNotified:    p.bool(KeyDealerNotified),
		Readmitted:        p.bool(KeyReadmitted),
		ShippingAlertSent: p.bool(KeyShippingAlertSent),
	}
	m.Gate.Notification.Attempts = p.int(KeyNotificationAttempts)
	m.Gate.Notification.LastAttempt = p.time(KeyLastNotificationAttempt)

	m.SyncError = f[KeySyncError]

	for k, v := range f {
		if _, ok := knownKeys[k]; ok {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]string)
		}
		m.Extra[k] = v
	}

	if p.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMeta, p.err)
	}
	return m, nil
}

func putString(f map[string]string, key, v string) {
	if v != "" {
		f[key] = v
	}
}

func putInt(f map[string]string, key string, v int) {
	if v != 0 {
		f[key] = strconv.Itoa(v)
	}
}

func putBool(f map[string]string, key string, v bool) {
	if v {
		f[key] = "1"
	}
}

func putTime(f map[string]string, key string, v time.Time) {
	if !v.IsZero() {
		f[key] = strconv.FormatInt(v.Unix(), 10)
	}
}

// fieldParser keeps the first conversion error.
type fieldParser struct {
	f   map[string]string
	err error
}

func (p *fieldParser) int(key string) int {
	raw, ok := p.f[key]
	if !ok || raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
	return v
}

func (p *fieldParser) bool(key string) bool {
	raw := p.f[key]
	return raw == "1" || raw == "true" || raw == "yes"
}

func (p *fieldParser) time(key string) time.Time {
	raw, ok := p.f[key]
	if !ok || raw == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%s: %w", key, err)
		}
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
