package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDealerRequest(t *testing.T) {
	msg, err := NewDealerRequest("nz@dealer.test", DealerRequest{
		OrderID:    77,
		Country:    "NZ",
		Customer:   "Kiri <Smith>",
		Address:    []string{"5 Queen St", "Auckland"},
		Items:      []DealerItem{{Name: "Widget", SKU: "W-1", Quantity: 2}},
		AcceptURL:  "https://shop.test/dealer/orders/77/accept?token=a&b",
		DeclineURL: "https://shop.test/dealer/orders/77/decline?token=d",
		Deadline:   time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "nz@dealer.test", msg.To)
	assert.Equal(t, "Action required: international order #77", msg.Subject)
	assert.Contains(t, msg.HTML, "International order #77 (NZ)")
	assert.Contains(t, msg.HTML, "Kiri &lt;Smith&gt;")
	assert.Contains(t, msg.HTML, `href="https://shop.test/dealer/orders/77/accept?token=a&amp;b"`)
	assert.Contains(t, msg.HTML, "/dealer/orders/77/decline?token=d")
	assert.Contains(t, msg.HTML, "<td>W-1</td><td>2</td>")
	assert.Contains(t, msg.HTML, "Wed 04 Mar 2026 10:00 UTC")
}

func TestNewOpsAlert(t *testing.T) {
	msg, err := NewOpsAlert("ops@shop.test", OpsAlert{
		OrderID: 9,
		Title:   "Shipment tracking timed out",
		Detail:  "No consignment after 48 working hours.",
		At:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "ops@shop.test", msg.To)
	assert.Equal(t, "[Order #9] Shipment tracking timed out", msg.Subject)
	assert.Contains(t, msg.HTML, "No consignment after 48 working hours.")
	assert.Contains(t, msg.HTML, "2026-03-10 09:00 UTC")
}
