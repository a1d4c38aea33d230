package service

import (
	"context"
	"time"

	"pronto-sync/internal/core/logger"
	"pronto-sync/internal/core/retry"
	"pronto-sync/internal/core/worktime"
	orders "pronto-sync/internal/features/orders/domain"

	"go.uber.org/zap"
)

// ShipmentCheckpoints are the site-local minutes at which shipments are polled.
var ShipmentCheckpoints = []worktime.ClockTime{
	{Hour: 11, Minute: 25},
	{Hour: 16, Minute: 55},
}

// NumberQueue lists orders waiting for a Pronto order number.
type NumberQueue interface {
	AwaitingNumber(ctx context.Context, syncedBefore time.Time, limit int64) ([]int64, error)
}

// NumberFetcher polls Pronto for one order number.
type NumberFetcher interface {
	FetchNumber(ctx context.Context, orderID int64) (retry.Outcome, error)
}

// ShipmentPoller advances the oldest actionable shipment.
type ShipmentPoller interface {
	PollNext(ctx context.Context) (orderID int64, found bool, err error)
}

// GateSweeper advances the earliest due approval-gate timer.
type GateSweeper interface {
	Sweep(ctx context.Context) (orderID int64, found bool, err error)
}

// AlertRedeliverer retries one operations alert whose first delivery failed.
type AlertRedeliverer interface {
	RedeliverPending(ctx context.Context) (orderID int64, found bool, err error)
}

// State is the bookkeeping carried from one tick to the next.
type State struct {
	LastRun time.Time `json:"last_run"`
	Runs    int       `json:"runs"`
}

// StepResult describes the work one step of a tick did.
type StepResult struct {
	OrderID int64  `json:"order_id,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TickReport summarises a tick.
type TickReport struct {
	At          time.Time   `json:"at"`
	Throttled   bool        `json:"throttled"`
	NumberFetch *StepResult `json:"number_fetch,omitempty"`
	Shipment    *StepResult `json:"shipment,omitempty"`
	Gate        *StepResult `json:"gate,omitempty"`
	Alert       *StepResult `json:"alert,omitempty"`
}

// Scheduler performs the periodic work. It keeps no state of its own; the
// caller owns the State passed to Tick.
type Scheduler struct {
	queue       NumberQueue
	fetcher     NumberFetcher
	shipments   ShipmentPoller
	gate        GateSweeper
	alerts      AlertRedeliverer
	minInterval time.Duration
	location    *time.Location
	checkpoints []worktime.ClockTime
	now         func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	queue NumberQueue,
	fetcher NumberFetcher,
	shipments ShipmentPoller,
	gate GateSweeper,
	alerts AlertRedeliverer,
	minInterval time.Duration,
	location *time.Location,
) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		queue:       queue,
		fetcher:     fetcher,
		shipments:   shipments,
		gate:        gate,
		alerts:      alerts,
		minInterval: minInterval,
		location:    location,
		checkpoints: ShipmentCheckpoints,
		now:         time.Now,
	}
}

// Tick runs one scheduling pass unless the previous one in state is more
// recent than the minimum interval. Each step touches at most one order.
func (s *Scheduler) Tick(ctx context.Context, state *State) TickReport {
	now := s.now()
	report := TickReport{At: now}

	if !state.LastRun.IsZero() && now.Sub(state.LastRun) < s.minInterval {
		report.Throttled = true
		return report
	}
	state.LastRun = now
	state.Runs++

	report.NumberFetch = s.fetchOldestNumber(ctx, now)

	if s.atCheckpoint(now) {
		report.Shipment = s.step(ctx, "shipment", s.shipments.PollNext)
	}

	report.Gate = s.step(ctx, "gate", s.gate.Sweep)
	report.Alert = s.step(ctx, "alert", s.alerts.RedeliverPending)

	return report
}

func (s *Scheduler) fetchOldestNumber(ctx context.Context, now time.Time) *StepResult {
	log := logger.FromContext(ctx)

	ids, err := s.queue.AwaitingNumber(ctx, now.Add(-orders.NumberFetchDelay), 1)
	if err != nil {
		log.Error("Failed to query orders awaiting a number", zap.Error(err))
		return &StepResult{Error: err.Error()}
	}
	if len(ids) == 0 {
		return nil
	}

	result := &StepResult{OrderID: ids[0]}
	outcome, err := s.fetcher.FetchNumber(ctx, ids[0])
	result.Outcome = outcome.String()
	if err != nil {
		result.Error = err.Error()
		log.Debug("Number fetch step finished with error", zap.Int64("order_id", ids[0]), zap.Error(err))
	}
	return result
}

func (s *Scheduler) step(ctx context.Context, name string, run func(context.Context) (int64, bool, error)) *StepResult {
	orderID, found, err := run(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("Scheduler step failed",
			zap.String("step", name),
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return &StepResult{OrderID: orderID, Error: err.Error()}
	}
	if !found {
		return nil
	}
	return &StepResult{OrderID: orderID, Outcome: "processed"}
}

func (s *Scheduler) atCheckpoint(now time.Time) bool {
	for _, c := range s.checkpoints {
		if c.Matches(now, s.location) {
			return true
		}
	}
	return false
}
