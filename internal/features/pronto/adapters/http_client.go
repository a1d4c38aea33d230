package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/config"
	"pronto-sync/internal/core/httpclient"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/features/pronto/domain"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// endpoint is one configured Pronto instance.
type endpoint struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// HTTPClient implements ports.Client over the Pronto JSON API.
type HTTPClient struct {
	defaultEnv domain.Environment
	endpoints  map[domain.Environment]*endpoint
}

// NewHTTPClient builds a client for every environment that has a URL configured.
func NewHTTPClient(cfg config.ProntoConfig) *HTTPClient {
	c := &HTTPClient{
		defaultEnv: domain.Environment(cfg.Environment),
		endpoints:  make(map[domain.Environment]*endpoint),
	}
	c.register(domain.EnvironmentTest, cfg.TestURL, cfg.TestUser, cfg.TestPassword, cfg.Timeout)
	c.register(domain.EnvironmentProd, cfg.ProdURL, cfg.ProdUser, cfg.ProdPassword, cfg.Timeout)
	return c
}

func (c *HTTPClient) register(env domain.Environment, baseURL, user, password string, timeout time.Duration) {
	if baseURL == "" {
		return
	}
	c.endpoints[env] = &endpoint{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpclient.NewBasicAuthClient(timeout, user, password),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "pronto-" + string(env),
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// Only transport failures and server errors count against the breaker.
			IsSuccessful: func(err error) bool {
				var transport *apperror.TransportError
				var rejected *apperror.RemoteRejectedError
				if errors.As(err, &transport) {
					return false
				}
				if errors.As(err, &rejected) && rejected.StatusCode >= 500 {
					return false
				}
				return true
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Get().Warn("Pronto circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

type submitResponse struct {
	TransactionUUID string `json:"transaction_uuid"`
}

type transactionResponse struct {
	Status  string `json:"status"`
	OrderNo string `json:"order_no"`
}

type salesOrderResponse struct {
	OrderNo         string `json:"order_no"`
	Status          string `json:"status"`
	ConsignmentNote string `json:"consignment_note"`
	Carrier         string `json:"carrier"`
}

// Submit posts a sales order.
func (c *HTTPClient) Submit(ctx context.Context, env domain.Environment, payload *domain.OrderPayload) (string, error) {
	var resp submitResponse
	if err := c.call(ctx, env, "pronto.submit", http.MethodPost, "/api/sales-orders", payload, &resp); err != nil {
		return "", err
	}
	if resp.TransactionUUID == "" {
		return "", &apperror.RemoteRejectedError{Op: "pronto.submit", StatusCode: http.StatusOK, Body: "missing transaction_uuid"}
	}
	return resp.TransactionUUID, nil
}

// FetchOrderNumber reads the transaction status.
func (c *HTTPClient) FetchOrderNumber(ctx context.Context, env domain.Environment, transactionID string) (string, error) {
	var resp transactionResponse
	path := "/api/transactions/" + url.PathEscape(transactionID)
	if err := c.call(ctx, env, "pronto.fetch_order_number", http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.OrderNo == "" {
		return "", fmt.Errorf("transaction %s is %q: %w", transactionID, resp.Status, domain.ErrNotReady)
	}
	return resp.OrderNo, nil
}

// FetchShipment reads the sales order and returns its consignment.
func (c *HTTPClient) FetchShipment(ctx context.Context, env domain.Environment, orderNumber string) (*domain.TrackingRef, error) {
	var resp salesOrderResponse
	path := "/api/sales-orders/" + url.PathEscape(orderNumber)
	if err := c.call(ctx, env, "pronto.fetch_shipment", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.ConsignmentNote == "" {
		return nil, fmt.Errorf("order %s has no consignment: %w", orderNumber, domain.ErrNotReady)
	}
	return &domain.TrackingRef{ConsignmentNote: resp.ConsignmentNote, Carrier: resp.Carrier}, nil
}

func (c *HTTPClient) resolve(env domain.Environment) (*endpoint, error) {
	if env == "" {
		env = c.defaultEnv
	}
	ep, ok := c.endpoints[env]
	if !ok {
		return nil, apperror.Validation("pronto environment %q is not configured", env)
	}
	return ep, nil
}

// call executes one request through the environment's circuit breaker.
func (c *HTTPClient) call(ctx context.Context, env domain.Environment, op, method, path string, in, out any) error {
	ep, err := c.resolve(env)
	if err != nil {
		return err
	}

	_, err = ep.breaker.Execute(func() (interface{}, error) {
		return nil, ep.do(ctx, op, method, path, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &apperror.TransportError{Op: op, Err: err}
	}
	return err
}

func (ep *endpoint) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, ep.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ep.client.Do(req)
	if err != nil {
		return &apperror.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &apperror.TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.FromContext(ctx).Warn("Pronto rejected request",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return &apperror.RemoteRejectedError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
