package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeta_FieldsRoundTrip(t *testing.T) {
	synced := time.Unix(1767225600, 0)
	m := &Meta{
		Submission:  &Submission{TransactionUUID: "txn-1", SyncedAt: synced, OrderNumber: "SO-77"},
		Environment: "prod",
		Shipment:    Shipment{TrackingStart: synced.Add(time.Hour)},
		Gate: Gate{
			Evaluated:       true,
			IsInternational: true,
			DealerResponse:  DealerResponseDeclined,
			Readmitted:      true,
		},
		Extra: map[string]string{"_custom": "kept"},
	}
	m.FetchRetry.Attempts = 3
	m.Shipment.Tracking.Attempts = 2
	m.Shipment.Tracking.LastAttempt = synced.Add(2 * time.Hour)

	fields := m.Fields()
	assert.Equal(t, "txn-1", fields[KeyTransactionUUID])
	assert.Equal(t, "1767225600", fields[KeySyncTime])
	assert.Equal(t, "SO-77", fields[KeyProntoOrderNumber])
	assert.Equal(t, "declined", fields[KeyDealerResponse])
	assert.Equal(t, "1", fields[KeyIsInternational])
	assert.NotContains(t, fields, KeyPreventProntoSync)
	assert.NotContains(t, fields, KeyShipmentNumber)

	parsed, err := ParseMeta(fields)
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
}

func TestParseMeta_NumberWithoutTransactionIsCorrupt(t *testing.T) {
	_, err := ParseMeta(map[string]string{KeyProntoOrderNumber: "SO-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptMeta)
}

func TestParseMeta_TransactionWithoutSyncTimeIsCorrupt(t *testing.T) {
	_, err := ParseMeta(map[string]string{KeyTransactionUUID: "txn"})
	assert.ErrorIs(t, err, ErrCorruptMeta)
}

func TestParseMeta_BadInteger(t *testing.T) {
	_, err := ParseMeta(map[string]string{KeyFetchRetryCount: "many"})
	assert.ErrorIs(t, err, ErrCorruptMeta)
}

func TestMeta_SyncState(t *testing.T) {
	synced := time.Unix(1000, 0)
	tests := []struct {
		name string
		meta Meta
		want SyncState
	}{
		{"fresh", Meta{}, SyncUnsynced},
		{"diverted", Meta{Gate: Gate{PreventSync: true}}, SyncSkipped},
		{"failed", Meta{SyncError: "dealer unreachable"}, SyncFailed},
		{"submitted", Meta{Submission: &Submission{TransactionUUID: "t", SyncedAt: synced}}, SyncSubmitted},
		{"numbered", Meta{Submission: &Submission{TransactionUUID: "t", SyncedAt: synced, OrderNumber: "n"}}, SyncNumbered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.SyncState())
		})
	}

	abandoned := Meta{Submission: &Submission{TransactionUUID: "t", SyncedAt: synced}}
	abandoned.FetchRetry.Attempts = MaxFetchAttempts
	assert.Equal(t, SyncAbandoned, abandoned.SyncState())
}

func TestMeta_AwaitingNumber(t *testing.T) {
	synced := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	m := Meta{Submission: &Submission{TransactionUUID: "t", SyncedAt: synced}}

	assert.False(t, m.AwaitingNumber(synced.Add(119*time.Second)))
	assert.True(t, m.AwaitingNumber(synced.Add(120*time.Second)))

	m.FetchRetry.Attempts = MaxFetchAttempts - 1
	assert.True(t, m.AwaitingNumber(synced.Add(time.Hour)))
	m.FetchRetry.Attempts = MaxFetchAttempts
	assert.False(t, m.AwaitingNumber(synced.Add(time.Hour)))

	m.FetchRetry.Attempts = 0
	m.Submission.OrderNumber = "SO-1"
	assert.False(t, m.AwaitingNumber(synced.Add(time.Hour)))
}

func TestMeta_ShipmentState(t *testing.T) {
	numbered := &Submission{TransactionUUID: "t", SyncedAt: time.Unix(1, 0), OrderNumber: "n"}

	assert.Equal(t, ShipmentNotApplicable, (&Meta{}).ShipmentState())
	assert.Equal(t, ShipmentPending, (&Meta{Submission: numbered}).ShipmentState())
	assert.Equal(t, ShipmentShipped, (&Meta{Submission: numbered, Shipment: Shipment{Number: "CN1"}}).ShipmentState())
	assert.Equal(t, ShipmentTimedOut, (&Meta{Submission: numbered, Shipment: Shipment{TimedOut: true}}).ShipmentState())
	assert.True(t, (&Meta{Submission: numbered}).AwaitingShipment())
}

func TestMeta_GateState(t *testing.T) {
	tests := []struct {
		name string
		meta Meta
		want GateState
	}{
		{"new", Meta{}, GateNew},
		{"domestic", Meta{Gate: Gate{Evaluated: true}}, GateDomestic},
		{"awaiting", Meta{Gate: Gate{Evaluated: true, IsInternational: true, PreventSync: true}}, GateAwaitingDealer},
		{"accepted", Meta{Gate: Gate{Evaluated: true, IsInternational: true, DealerResponse: DealerResponseAccepted}}, GateAccepted},
		{"declined", Meta{Gate: Gate{Evaluated: true, IsInternational: true, DealerResponse: DealerResponseDeclined}}, GateDeclined},
		{"timeout", Meta{Gate: Gate{Evaluated: true, IsInternational: true, DealerResponse: DealerResponseTimeout}}, GateTimedOut},
		{"failed", Meta{Gate: Gate{Evaluated: true, IsInternational: true, PreventSync: true}, SyncError: "x"}, GateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.GateState())
		})
	}
}

func TestMeta_GateDue(t *testing.T) {
	deadline := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	m := Meta{Gate: Gate{Evaluated: true, IsInternational: true, PreventSync: true, DecisionDeadline: deadline}}

	due, ok := m.GateDue()
	require.True(t, ok)
	assert.Equal(t, time.Unix(0, 0), due, "unsent notification is due immediately")

	last := deadline.Add(-47 * time.Hour)
	m.Gate.Notification.LastAttempt = last
	due, _ = m.GateDue()
	assert.Equal(t, last.Add(NotificationRetryInterval), due)

	m.Gate.DealerNotified = true
	due, _ = m.GateDue()
	assert.Equal(t, deadline, due)

	m.Gate.DealerResponse = DealerResponseAccepted
	m.Gate.ShippingDeadline = deadline.Add(DealerShippingWindow)
	due, ok = m.GateDue()
	require.True(t, ok)
	assert.Equal(t, deadline.Add(DealerShippingWindow), due)

	m.Gate.ShippingAlertSent = true
	_, ok = m.GateDue()
	assert.False(t, ok)

	_, ok = (&Meta{Gate: Gate{Evaluated: true}}).GateDue()
	assert.False(t, ok)
}
