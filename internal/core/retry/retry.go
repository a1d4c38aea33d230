// Package retry implements the bounded-retry bookkeeping shared by number
// fetching, shipment polling and dealer notifications.
package retry

import "time"

// Outcome is the result of one guarded attempt.
type Outcome int

const (
	// Skipped means the attempt was not made: not due yet or already exhausted.
	Skipped Outcome = iota
	// Succeeded means the attempt ran and returned no error.
	Succeeded
	// Retrying means the attempt failed and more attempts remain.
	Retrying
	// Exhausted means the attempt failed and it was the last one allowed.
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Retrying:
		return "retrying"
	case Exhausted:
		return "exhausted"
	default:
		return "skipped"
	}
}

// Policy bounds how often and how many times an action is attempted.
type Policy struct {
	// MaxAttempts is the number of failed attempts allowed. Zero means unbounded.
	MaxAttempts int
	// Interval is the minimum time between two attempts.
	Interval time.Duration
}

// Counter is the persisted state of a bounded retry.
type Counter struct {
	Attempts    int
	LastAttempt time.Time
}

// Exhausted reports whether no further attempts are allowed.
func (p Policy) Exhausted(c Counter) bool {
	return p.MaxAttempts > 0 && c.Attempts >= p.MaxAttempts
}

// Due reports whether an attempt may be made at now.
func (p Policy) Due(c Counter, now time.Time) bool {
	if p.Exhausted(c) {
		return false
	}
	if c.LastAttempt.IsZero() || p.Interval <= 0 {
		return true
	}
	return !now.Before(c.LastAttempt.Add(p.Interval))
}

// NextAttempt returns the earliest time the next attempt is allowed.
func (p Policy) NextAttempt(c Counter) time.Time {
	if c.LastAttempt.IsZero() {
		return time.Time{}
	}
	return c.LastAttempt.Add(p.Interval)
}

// Attempt runs fn when due and records the attempt in c.
// Successful attempts leave the counter untouched so callers decide whether to reset it.
func (p Policy) Attempt(c *Counter, now time.Time, fn func() error) (Outcome, error) {
	if !p.Due(*c, now) {
		return Skipped, nil
	}

	err := fn()
	if err == nil {
		return Succeeded, nil
	}

	c.Attempts++
	c.LastAttempt = now

	if p.Exhausted(*c) {
		return Exhausted, err
	}
	return Retrying, err
}

// Reset clears the counter after the phase it guards completed.
func (c *Counter) Reset() {
	*c = Counter{}
}
