package service

import (
	"context"

	"pronto-sync/internal/core/apperror"
	syncdomain "pronto-sync/internal/features/sync/domain"
)

// Status reports the stored order together with the derived state of every sub-machine.
func (o *Orchestrator) Status(ctx context.Context, orderID int64) (*syncdomain.StatusView, error) {
	if orderID <= 0 {
		return nil, apperror.Validation("invalid order id %d", orderID)
	}

	order, err := o.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	meta, err := o.store.GetMeta(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &syncdomain.StatusView{
		Order:    order,
		Sync:     meta.SyncState(),
		Shipment: meta.ShipmentState(),
		Gate:     meta.GateState(),
		Metadata: meta.Fields(),
	}, nil
}
