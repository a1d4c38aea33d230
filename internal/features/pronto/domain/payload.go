// Package domain holds the Pronto sales-order wire model.
package domain

import "errors"

// ErrNotReady is returned when Pronto has not produced the requested value yet.
var ErrNotReady = errors.New("pronto: not ready")

// Environment selects a Pronto instance.
type Environment string

const (
	EnvironmentTest Environment = "test"
	EnvironmentProd Environment = "prod"
)

// Payment method codes accepted by Pronto.
const (
	PaymentPayPal  = "PP"
	PaymentCard    = "CC"
	PaymentVoucher = "GV"
	defaultPayment = PaymentCard
)

// DeliveryAddress is the positional address block. Slot meaning depends on
// which optional parts the order carries, see Formatter.
type DeliveryAddress struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Address3 string `json:"address3"`
	Address4 string `json:"address4"`
	Address5 string `json:"address5"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// Line is a sales-order line. Every value is a fixed-format string.
type Line struct {
	ItemCode       string `json:"item_code"`
	Description    string `json:"description"`
	OrderedQty     string `json:"ordered_qty"`
	BackorderedQty string `json:"backordered_qty"`
	ShippedQty     string `json:"shipped_qty"`
	PriceIncTax    string `json:"price_inc_tax"`
	PriceExTax     string `json:"price_ex_tax"`
}

// Payment is the tender block of the order.
type Payment struct {
	Method string `json:"method"`
	Amount string `json:"amount"`
}

// OrderPayload is the body of a sales-order submission.
type OrderPayload struct {
	Debtor            string          `json:"debtor"`
	CustomerReference string          `json:"customer_reference"`
	OrderDate         string          `json:"order_date"`
	DeliveryAddress   DeliveryAddress `json:"delivery_address"`
	Payment           Payment         `json:"payment"`
	FreightIncTax     string          `json:"freight_inc_tax"`
	Notes             string          `json:"notes"`
	Lines             []Line          `json:"lines"`

	// Skipped lists line items left out because they had no SKU.
	Skipped []string `json:"-"`
}

// TrackingRef is the consignment of a dispatched Pronto order.
type TrackingRef struct {
	ConsignmentNote string
	Carrier         string
}
