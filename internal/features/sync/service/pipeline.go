package service

import (
	"context"
	"errors"
	"fmt"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/features/orders/domain"
	"pronto-sync/internal/features/orders/ports"
	syncdomain "pronto-sync/internal/features/sync/domain"

	"go.uber.org/zap"
)

// Gate decides whether a fresh processing order may enter the sync pipeline.
// Evaluate must be idempotent: a second call for the same order reports the
// stored decision and must not repeat notifications or re-admissions.
type Gate interface {
	Evaluate(ctx context.Context, order *domain.Order) (admitted bool, err error)
}

// Pipeline handles the storefront "order reached processing" event.
type Pipeline struct {
	store        ports.OrderStore
	storefront   ports.StoreFront
	gate         Gate
	orchestrator *Orchestrator
}

// NewPipeline creates a new Pipeline.
func NewPipeline(store ports.OrderStore, storefront ports.StoreFront, gate Gate, orchestrator *Orchestrator) *Pipeline {
	return &Pipeline{
		store:        store,
		storefront:   storefront,
		gate:         gate,
		orchestrator: orchestrator,
	}
}

// OnOrderReachedProcessing imports the order, runs the approval gate and
// submits admitted orders to Pronto. Replayed events are harmless.
func (p *Pipeline) OnOrderReachedProcessing(ctx context.Context, orderID int64) (*syncdomain.ProcessingResult, error) {
	if orderID <= 0 {
		return nil, apperror.Validation("invalid order id %d", orderID)
	}
	ctx = logger.WithOrderID(ctx, orderID)
	log := logger.FromContext(ctx)

	order, err := p.storefront.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch order %d: %w", orderID, err)
	}
	if order.Status != domain.OrderStatusProcessing {
		return nil, fmt.Errorf("%w: order %d is %q, not processing", apperror.ErrNotEligible, orderID, order.Status)
	}
	if err := p.store.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	admitted, err := p.gate.Evaluate(ctx, order)
	if err != nil {
		return nil, err
	}

	if admitted {
		_, err := p.orchestrator.Submit(ctx, orderID)
		switch {
		case errors.Is(err, apperror.ErrAlreadyProcessed):
			log.Info("Processing event replayed for submitted order")
		case err != nil:
			// Submission failures leave the order unsynced; an admin can retry it.
			log.Error("Pronto submission failed", zap.Error(err))
			return p.result(ctx, orderID, err)
		}
	}

	return p.result(ctx, orderID, nil)
}

func (p *Pipeline) result(ctx context.Context, orderID int64, cause error) (*syncdomain.ProcessingResult, error) {
	meta, err := p.store.GetMeta(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &syncdomain.ProcessingResult{
		OrderID: orderID,
		Gate:    meta.GateState(),
		Sync:    meta.SyncState(),
	}, cause
}
