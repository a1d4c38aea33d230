package domain

import (
	"fmt"
	"strconv"
	"strings"

	"pronto-sync/internal/core/logger"
	orders "pronto-sync/internal/features/orders/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTaxDivisor converts GST-inclusive prices to GST-exclusive ones.
var DefaultTaxDivisor = decimal.RequireFromString("1.1")

var paymentCodes = map[string]string{
	"paypal":        PaymentPayPal,
	"ppcp-gateway":  PaymentPayPal,
	"ppec_paypal":   PaymentPayPal,
	"stripe":        PaymentCard,
	"square_credit": PaymentCard,
	"pw_gift_card":  PaymentVoucher,
	"gift_card":     PaymentVoucher,
	"voucher":       PaymentVoucher,
}

// Formatter maps order aggregates to Pronto payloads. It performs no I/O.
type Formatter struct {
	debtor     string
	taxDivisor decimal.Decimal
}

// NewFormatter validates the divisor and returns a Formatter.
func NewFormatter(debtor, taxDivisor string) (*Formatter, error) {
	divisor := DefaultTaxDivisor
	if taxDivisor != "" {
		d, err := decimal.NewFromString(taxDivisor)
		if err != nil {
			return nil, fmt.Errorf("invalid tax divisor %q: %w", taxDivisor, err)
		}
		divisor = d
	}
	if !divisor.IsPositive() {
		return nil, fmt.Errorf("invalid tax divisor %q: must be positive", taxDivisor)
	}
	return &Formatter{debtor: debtor, taxDivisor: divisor}, nil
}

// Format builds the sales-order payload for order.
func (f *Formatter) Format(order *orders.Order, customerReference string) *OrderPayload {
	payload := &OrderPayload{
		Debtor:            f.debtor,
		CustomerReference: customerReference,
		OrderDate:         order.CreatedAt.Format("2006-01-02"),
		DeliveryAddress:   deliveryAddress(order),
		Payment: Payment{
			Method: PaymentCode(order.PaymentMethod),
			Amount: money(order.Total),
		},
		FreightIncTax: money(order.ShippingTotal),
		Notes:         strings.TrimSpace(order.CustomerNote),
		Lines:         make([]Line, 0, len(order.Items)),
	}

	for _, item := range order.Items {
		if reason := skipReason(item); reason != "" {
			logger.Get().Warn(reason,
				zap.String("order_id", strconv.FormatInt(order.ID, 10)),
				zap.String("line", item.Name),
				zap.String("sku", item.SKU),
				zap.Int("quantity", item.Quantity),
			)
			payload.Skipped = append(payload.Skipped, item.Name)
			continue
		}
		payload.Lines = append(payload.Lines, f.line(item))
	}

	return payload
}

func skipReason(item orders.LineItem) string {
	switch {
	case item.SKU == "":
		return "Skipping order line without SKU"
	case item.Quantity <= 0:
		return "Skipping order line without quantity"
	}
	return ""
}

func (f *Formatter) line(item orders.LineItem) Line {
	qty := decimal.NewFromInt(int64(item.Quantity))
	inc := item.Total.Div(qty).Round(2)
	ex := inc.Div(f.taxDivisor).Round(2)

	return Line{
		ItemCode:       item.SKU,
		Description:    item.Name,
		OrderedQty:     strconv.Itoa(item.Quantity),
		BackorderedQty: "0.0",
		ShippedQty:     qty.StringFixed(1),
		PriceIncTax:    money(inc),
		PriceExTax:     money(ex),
	}
}

// deliveryAddress fills the positional slots. Slot 1 always carries the
// recipient; the rest shift left when company or second line are missing.
func deliveryAddress(order *orders.Order) DeliveryAddress {
	a := order.Shipping
	if a.Address1 == "" {
		a = order.Billing
	}

	company := strings.TrimSpace(a.Company)
	street := strings.TrimSpace(a.Address1)
	line2 := strings.TrimSpace(a.Address2)
	cityState := strings.TrimSpace(strings.TrimSpace(a.City) + " " + strings.TrimSpace(a.State))

	out := DeliveryAddress{
		Address1: a.FullName(),
		Postcode: strings.TrimSpace(a.Postcode),
		Country:  strings.ToUpper(strings.TrimSpace(a.Country)),
		Phone:    firstNonEmpty(a.Phone, order.Billing.Phone),
		Email:    firstNonEmpty(a.Email, order.Billing.Email),
	}

	switch {
	case company != "" && line2 != "":
		out.Address2 = company
		out.Address3 = street
		out.Address4 = line2
		out.Address5 = cityState
	case company != "":
		out.Address2 = company
		out.Address3 = street
		out.Address4 = cityState
	case line2 != "":
		out.Address2 = street
		out.Address3 = line2
		out.Address4 = cityState
	default:
		out.Address2 = street
		out.Address3 = cityState
	}
	return out
}

// PaymentCode maps a storefront payment method id to PP, CC or GV.
func PaymentCode(method string) string {
	if code, ok := paymentCodes[strings.ToLower(strings.TrimSpace(method))]; ok {
		return code
	}
	return defaultPayment
}

func money(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
