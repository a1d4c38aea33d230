package service

import (
	"context"
	"sync"
	"time"

	"pronto-sync/internal/core/logger"

	"go.uber.org/zap"
)

// Runner owns the scheduler State and serialises ticks from the HTTP trigger
// and the optional in-process ticker.
type Runner struct {
	scheduler *Scheduler
	interval  time.Duration

	mu    sync.Mutex
	state State

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	runMu     sync.Mutex
	isRunning bool
}

// NewRunner creates a new Runner. interval drives Start.
func NewRunner(scheduler *Scheduler, interval time.Duration) *Runner {
	return &Runner{
		scheduler: scheduler,
		interval:  interval,
	}
}

// Trigger runs one tick. Concurrent callers wait for each other.
func (r *Runner) Trigger(ctx context.Context) TickReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scheduler.Tick(ctx, &r.state)
}

// State returns a copy of the current scheduler state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start launches the ticker loop. It is a no-op when already running or
// when no interval is configured.
func (r *Runner) Start(ctx context.Context) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.isRunning || r.interval <= 0 {
		return
	}
	r.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.runLoop(ctx)

	logger.Get().Info("Scheduler ticker started", zap.Duration("interval", r.interval))
}

// Stop halts the ticker loop and waits for an in-flight tick.
func (r *Runner) Stop(ctx context.Context) error {
	r.runMu.Lock()
	if !r.isRunning {
		r.runMu.Unlock()
		return nil
	}
	r.isRunning = false
	r.runMu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Get().Info("Scheduler ticker stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) runLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Trigger(ctx)
		}
	}
}
