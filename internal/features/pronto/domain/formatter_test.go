package domain

import (
	"encoding/json"
	"testing"
	"time"

	"pronto-sync/internal/core/logger"
	orders "pronto-sync/internal/features/orders/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestFormatter(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter("WEB", "1.1")
	require.NoError(t, err)
	return f
}

func sampleOrder() *orders.Order {
	return &orders.Order{
		ID:            42,
		CreatedAt:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		PaymentMethod: "stripe",
		Total:         decimal.RequireFromString("120"),
		ShippingTotal: decimal.RequireFromString("10"),
		CustomerNote:  " Leave at door ",
		Billing:       orders.Address{Email: "jane@example.com", Phone: "0400000000"},
		Shipping: orders.Address{
			FirstName: "Jane",
			LastName:  "Citizen",
			Address1:  "1 Main St",
			City:      "Sydney",
			State:     "NSW",
			Postcode:  "2000",
			Country:   "au",
		},
		Items: []orders.LineItem{
			{ID: 1, Name: "Widget", SKU: "W-1", Quantity: 1, Total: decimal.RequireFromString("110.00")},
		},
	}
}

func TestFormatter_AddressBranchTable(t *testing.T) {
	tests := []struct {
		name     string
		company  string
		address2 string
		want     [4]string
	}{
		{"company and second line", "Acme", "Suite 4", [4]string{"Acme", "1 Main St", "Suite 4", "Sydney NSW"}},
		{"company only", "Acme", "", [4]string{"Acme", "1 Main St", "Sydney NSW", ""}},
		{"second line only", "", "Suite 4", [4]string{"1 Main St", "Suite 4", "Sydney NSW", ""}},
		{"neither", "", "", [4]string{"1 Main St", "Sydney NSW", "", ""}},
	}

	f := newTestFormatter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sampleOrder()
			order.Shipping.Company = tt.company
			order.Shipping.Address2 = tt.address2

			addr := f.Format(order, "WEB42").DeliveryAddress
			assert.Equal(t, "Jane Citizen", addr.Address1)
			assert.Equal(t, tt.want, [4]string{addr.Address2, addr.Address3, addr.Address4, addr.Address5})
		})
	}
}

func TestFormatter_PriceDivisor(t *testing.T) {
	payload := newTestFormatter(t).Format(sampleOrder(), "WEB42")

	require.Len(t, payload.Lines, 1)
	line := payload.Lines[0]
	assert.Equal(t, "110.00", line.PriceIncTax)
	assert.Equal(t, "100.00", line.PriceExTax)
}

func TestFormatter_LineQuantities(t *testing.T) {
	order := sampleOrder()
	order.Items = []orders.LineItem{
		{Name: "Bolt", SKU: "B-3", Quantity: 3, Total: decimal.RequireFromString("10.00")},
	}

	line := newTestFormatter(t).Format(order, "WEB42").Lines[0]
	assert.Equal(t, "3", line.OrderedQty)
	assert.Equal(t, "0.0", line.BackorderedQty)
	assert.Equal(t, "3.0", line.ShippedQty)
	assert.Equal(t, "3.33", line.PriceIncTax)
	assert.Equal(t, "3.03", line.PriceExTax)
}

func TestFormatter_SkipsLinesWithoutSKU(t *testing.T) {
	order := sampleOrder()
	order.Items = append(order.Items, orders.LineItem{Name: "Gift wrap", Quantity: 1, Total: decimal.RequireFromString("5")})

	payload := newTestFormatter(t).Format(order, "WEB42")
	require.Len(t, payload.Lines, 1)
	assert.Equal(t, "W-1", payload.Lines[0].ItemCode)
	assert.Equal(t, []string{"Gift wrap"}, payload.Skipped)
}

func TestFormatter_SkippedLinesLogTheirReason(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	t.Cleanup(logger.Use(zap.New(core)))

	order := sampleOrder()
	order.Items = append(order.Items,
		orders.LineItem{Name: "Gift wrap", Quantity: 1, Total: decimal.RequireFromString("5")},
		orders.LineItem{Name: "Refunded widget", SKU: "W-2", Quantity: 0, Total: decimal.Zero},
	)

	payload := newTestFormatter(t).Format(order, "WEB42")
	assert.Equal(t, []string{"Gift wrap", "Refunded widget"}, payload.Skipped)

	noSKU := logs.FilterMessage("Skipping order line without SKU").All()
	require.Len(t, noSKU, 1)
	assert.Equal(t, "Gift wrap", noSKU[0].ContextMap()["line"])

	noQty := logs.FilterMessage("Skipping order line without quantity").All()
	require.Len(t, noQty, 1)
	assert.Equal(t, "Refunded widget", noQty[0].ContextMap()["line"])
	assert.Equal(t, int64(0), noQty[0].ContextMap()["quantity"])
}

func TestFormatter_HeaderFields(t *testing.T) {
	payload := newTestFormatter(t).Format(sampleOrder(), "WEB42")

	assert.Equal(t, "WEB", payload.Debtor)
	assert.Equal(t, "WEB42", payload.CustomerReference)
	assert.Equal(t, "2026-03-02", payload.OrderDate)
	assert.Equal(t, Payment{Method: "CC", Amount: "120.00"}, payload.Payment)
	assert.Equal(t, "10.00", payload.FreightIncTax)
	assert.Equal(t, "Leave at door", payload.Notes)
	assert.Equal(t, "AU", payload.DeliveryAddress.Country)
	assert.Equal(t, "jane@example.com", payload.DeliveryAddress.Email)
	assert.Equal(t, "0400000000", payload.DeliveryAddress.Phone)
}

func TestFormatter_Deterministic(t *testing.T) {
	f := newTestFormatter(t)
	first, err := json.Marshal(f.Format(sampleOrder(), "WEB42"))
	require.NoError(t, err)
	second, err := json.Marshal(f.Format(sampleOrder(), "WEB42"))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.NotContains(t, string(first), "Skipped")
}

func TestPaymentCode(t *testing.T) {
	assert.Equal(t, "PP", PaymentCode("paypal"))
	assert.Equal(t, "PP", PaymentCode("PPCP-Gateway"))
	assert.Equal(t, "GV", PaymentCode("pw_gift_card"))
	assert.Equal(t, "CC", PaymentCode("stripe"))
	assert.Equal(t, "CC", PaymentCode("bacs"))
	assert.Equal(t, "CC", PaymentCode(""))
}

func TestNewFormatter_InvalidDivisor(t *testing.T) {
	_, err := NewFormatter("WEB", "abc")
	assert.Error(t, err)

	_, err = NewFormatter("WEB", "0")
	assert.Error(t, err)

	f, err := NewFormatter("WEB", "")
	require.NoError(t, err)
	assert.True(t, DefaultTaxDivisor.Equal(f.taxDivisor))
}
