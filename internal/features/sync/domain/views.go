package domain

import (
	orders "pronto-sync/internal/features/orders/domain"
)

// ProcessingResult summarises what happened to an order entering processing.
type ProcessingResult struct {
	OrderID int64            `json:"order_id"`
	Gate    orders.GateState `json:"gate_state"`
	Sync    orders.SyncState `json:"sync_state"`
}

// StatusView is the administrative view of an order's sync progress.
type StatusView struct {
	Order    *orders.Order        `json:"order"`
	Sync     orders.SyncState     `json:"sync_state"`
	Shipment orders.ShipmentState `json:"shipment_state"`
	Gate     orders.GateState     `json:"gate_state"`
	Metadata map[string]string    `json:"metadata"`
}
