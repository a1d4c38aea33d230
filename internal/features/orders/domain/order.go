package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the storefront status slug of an order.
type OrderStatus string

const (
	// OrderStatusProcessing is the paid state that starts the sync pipeline.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusProntoReceived marks an order accepted by Pronto.
	OrderStatusProntoReceived OrderStatus = "pronto-received"
	// OrderStatusCompleted marks a shipped order.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusFailed marks an order that needs manual handling.
	OrderStatusFailed OrderStatus = "failed"
)

// Address is a billing or shipping address.
type Address struct {
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

// FullName joins first and last name.
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// LineItem is a product line of an order.
type LineItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	// Total is the tax-inclusive line total.
	Total decimal.Decimal `json:"total"`
}

// Order is the storefront order aggregate consumed by the sync pipeline.
type Order struct {
	ID                 int64           `json:"id"`
	Status             OrderStatus     `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	Currency           string          `json:"currency"`
	Billing            Address         `json:"billing"`
	Shipping           Address         `json:"shipping"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	CustomerNote       string          `json:"customer_note"`
	ShippingTotal      decimal.Decimal `json:"shipping_total"`
	Total              decimal.Decimal `json:"total"`
	Items              []LineItem      `json:"items"`
}

// DestinationCountry is the shipping country, falling back to billing.
func (o *Order) DestinationCountry() string {
	if c := strings.TrimSpace(o.Shipping.Country); c != "" {
		return strings.ToUpper(c)
	}
	return strings.ToUpper(strings.TrimSpace(o.Billing.Country))
}
