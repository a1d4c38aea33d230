package adapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/config"
	"pronto-sync/internal/features/pronto/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewHTTPClient(config.ProntoConfig{
		Environment:  "test",
		TestURL:      server.URL + "/",
		TestUser:     "api",
		TestPassword: "secret",
		Timeout:      2 * time.Second,
	})
}

func TestHTTPClient_Submit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sales-orders", r.URL.Path)
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("api:secret")), r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload domain.OrderPayload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "WEB42", payload.CustomerReference)

		w.Write([]byte(`{"transaction_uuid":"txn-1"}`))
	})

	txn, err := client.Submit(context.Background(), "", &domain.OrderPayload{CustomerReference: "WEB42"})
	require.NoError(t, err)
	assert.Equal(t, "txn-1", txn)
}

func TestHTTPClient_SubmitRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"unknown item W-9"}`))
	})

	_, err := client.Submit(context.Background(), domain.EnvironmentTest, &domain.OrderPayload{})
	var rejected *apperror.RemoteRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusUnprocessableEntity, rejected.StatusCode)
	assert.Contains(t, rejected.Body, "unknown item")
}

func TestHTTPClient_FetchOrderNumber(t *testing.T) {
	t.Run("Assigned", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/transactions/txn-1", r.URL.Path)
			w.Write([]byte(`{"status":"complete","order_no":"SO-100"}`))
		})

		number, err := client.FetchOrderNumber(context.Background(), "", "txn-1")
		require.NoError(t, err)
		assert.Equal(t, "SO-100", number)
	})

	t.Run("Pending", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"queued"}`))
		})

		_, err := client.FetchOrderNumber(context.Background(), "", "txn-1")
		assert.ErrorIs(t, err, domain.ErrNotReady)
	})
}

func TestHTTPClient_FetchShipment(t *testing.T) {
	t.Run("Dispatched", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/sales-orders/SO-100", r.URL.Path)
			w.Write([]byte(`{"order_no":"SO-100","consignment_note":"CN123","carrier":"StarTrack"}`))
		})

		ref, err := client.FetchShipment(context.Background(), "", "SO-100")
		require.NoError(t, err)
		assert.Equal(t, &domain.TrackingRef{ConsignmentNote: "CN123", Carrier: "StarTrack"}, ref)
	})

	t.Run("NotDispatched", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"order_no":"SO-100"}`))
		})

		_, err := client.FetchShipment(context.Background(), "", "SO-100")
		assert.ErrorIs(t, err, domain.ErrNotReady)
	})
}

func TestHTTPClient_UnconfiguredEnvironment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Fail(t, "no request expected")
	})

	_, err := client.Submit(context.Background(), domain.EnvironmentProd, &domain.OrderPayload{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestHTTPClient_TransportError(t *testing.T) {
	client := NewHTTPClient(config.ProntoConfig{Environment: "test", TestURL: "http://127.0.0.1:1", Timeout: time.Second})

	_, err := client.FetchOrderNumber(context.Background(), "", "txn")
	var transport *apperror.TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestHTTPClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := client.FetchOrderNumber(context.Background(), "", "txn")
		var rejected *apperror.RemoteRejectedError
		require.True(t, errors.As(err, &rejected))
	}

	_, err := client.FetchOrderNumber(context.Background(), "", "txn")
	var transport *apperror.TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestHTTPClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 7; i++ {
		_, err := client.FetchShipment(context.Background(), "", "SO-1")
		var rejected *apperror.RemoteRejectedError
		require.True(t, errors.As(err, &rejected))
	}
	assert.Equal(t, int32(7), atomic.LoadInt32(&calls))
}
