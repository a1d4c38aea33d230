package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/config"
	"pronto-sync/internal/core/httpclient"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/features/orders/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WooCommerceAdapter implements ports.StoreFront using the WooCommerce REST API.
type WooCommerceAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the WooCommerce connection details.
	config config.WooCommerceConfig
}

// NewWooCommerceAdapter creates a new instance of WooCommerceAdapter.
func NewWooCommerceAdapter(cfg config.WooCommerceConfig) *WooCommerceAdapter {
	return &WooCommerceAdapter{
		client: httpclient.NewBasicAuthClient(10*time.Second, cfg.ConsumerKey, cfg.ConsumerSecret),
		config: cfg,
	}
}

// GetOrder fetches an order from WooCommerce and maps it to the domain entity.
func (a *WooCommerceAdapter) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var wcOrder woocommerceOrder
	if err := a.do(ctx, "woocommerce.get_order", http.MethodGet, a.orderURL(orderID), nil, &wcOrder); err != nil {
		return nil, err
	}
	return mapToDomain(wcOrder), nil
}

// UpdateStatus moves the order to the given status slug.
func (a *WooCommerceAdapter) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	return a.do(ctx, "woocommerce.update_status", http.MethodPut, a.orderURL(orderID), body, nil)
}

// AddNote adds a private note to the order.
func (a *WooCommerceAdapter) AddNote(ctx context.Context, orderID int64, note string) error {
	body := wcOrderNote{Note: note, CustomerNote: false}
	return a.do(ctx, "woocommerce.add_note", http.MethodPost, a.orderURL(orderID)+"/notes", body, nil)
}

// AddShipmentTracking records a tracking number through the Shipment Tracking extension.
func (a *WooCommerceAdapter) AddShipmentTracking(ctx context.Context, orderID int64, carrier, trackingNumber string) error {
	url := fmt.Sprintf("%s/wp-json/wc-shipment-tracking/v3/orders/%d/shipment-trackings", a.config.URL, orderID)
	body := wcTrackingItem{
		TrackingProvider: carrier,
		TrackingNumber:   trackingNumber,
		DateShipped:      time.Now().Format("2006-01-02"),
	}
	return a.do(ctx, "woocommerce.add_tracking", http.MethodPost, url, body, nil)
}

// HealthCheck verifies that the WooCommerce API is reachable and credentials are valid.
func (a *WooCommerceAdapter) HealthCheck(ctx context.Context) error {
	// Check orders endpoint with per_page=1 to verify auth and reachability
	url := fmt.Sprintf("%s/wp-json/wc/v3/orders?per_page=1", a.config.URL)
	if err := a.do(ctx, "woocommerce.health", http.MethodGet, url, nil, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (a *WooCommerceAdapter) orderURL(orderID int64) string {
	return fmt.Sprintf("%s/wp-json/wc/v3/orders/%d", a.config.URL, orderID)
}

// do sends a JSON request and decodes a JSON answer into out when out is non-nil.
func (a *WooCommerceAdapter) do(ctx context.Context, op, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return &apperror.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, apperror.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apperror.RemoteRejectedError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

// mapToDomain converts a raw WooCommerce order response into a domain Order entity.
func mapToDomain(wcOrder woocommerceOrder) *domain.Order {
	items := make([]domain.LineItem, 0, len(wcOrder.LineItems))
	for _, item := range wcOrder.LineItems {
		items = append(items, domain.LineItem{
			ID:       item.ID,
			Name:     item.Name,
			SKU:      strings.TrimSpace(item.Sku),
			Quantity: item.Quantity,
			Total:    item.Total.Add(item.TotalTax),
		})
	}

	return &domain.Order{
		ID:                 wcOrder.ID,
		Status:             domain.OrderStatus(strings.ToLower(wcOrder.Status)),
		CreatedAt:          time.Time(wcOrder.DateCreated),
		Currency:           wcOrder.Currency,
		Billing:            domain.Address(wcOrder.Billing),
		Shipping:           domain.Address(wcOrder.Shipping),
		PaymentMethod:      wcOrder.PaymentMethod,
		PaymentMethodTitle: wcOrder.PaymentMethodTitle,
		CustomerNote:       wcOrder.CustomerNote,
		ShippingTotal:      wcOrder.ShippingTotal.Add(wcOrder.ShippingTax),
		Total:              wcOrder.Total,
		Items:              items,
	}
}

// internal structs for mapping

// woocommerceOrder represents the JSON structure of an order from WooCommerce API.
type woocommerceOrder struct {
	ID                 int64           `json:"id"`
	Status             string          `json:"status"`
	Currency           string          `json:"currency"`
	DateCreated        wcTime          `json:"date_created_gmt"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	CustomerNote       string          `json:"customer_note"`
	Total              decimal.Decimal `json:"total"`
	ShippingTotal      decimal.Decimal `json:"shipping_total"`
	ShippingTax        decimal.Decimal `json:"shipping_tax"`
	Billing            wcAddress       `json:"billing"`
	Shipping           wcAddress       `json:"shipping"`
	LineItems          []wcLineItem    `json:"line_items"`
}

// wcAddress mirrors both billing and shipping blocks; shipping has no email.
type wcAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// wcLineItem represents a product in the WooCommerce order.
// Total excludes tax; WooCommerce reports line tax separately.
type wcLineItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Sku      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
	TotalTax decimal.Decimal `json:"total_tax"`
}

// wcOrderNote is the body of the order notes endpoint.
type wcOrderNote struct {
	Note         string `json:"note"`
	CustomerNote bool   `json:"customer_note"`
}

// wcTrackingItem represents a single tracking entry from WooCommerce Shipment Tracking plugin.
type wcTrackingItem struct {
	// TrackingProvider is the carrier name.
	TrackingProvider string `json:"tracking_provider"`
	// TrackingNumber is the shipment tracking number.
	TrackingNumber string `json:"tracking_number"`
	// DateShipped is the date the package was shipped (format: YYYY-MM-DD).
	DateShipped string `json:"date_shipped"`
}

// wcTime is a custom helper struct to handle WooCommerce's date format.
type wcTime time.Time

// UnmarshalJSON parses the custom date format used by WooCommerce.
func (t *wcTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	// WooCommerce usually returns ISO8601 "2018-12-19T14:48:25"
	if s == "null" || s == "" {
		*t = wcTime(time.Time{})
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		logger.Get().Warn("Failed to parse date", zap.String("date", s), zap.Error(err))
		return nil
	}
	*t = wcTime(parsed)
	return nil
}
