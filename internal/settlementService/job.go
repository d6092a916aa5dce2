package settlement

import (
	"context"
	"fmt"
	"time"

	"auction-settlement/internal/metrics"
	"auction-settlement/utils"
)

// Job names, also used as route suffixes and lease keys
const (
	AuctionJobName    = "ended-auctions"
	CommissionJobName = "verify-commissions"
)

// RunResult summarizes one batch
type RunResult struct {
	Job        string    `json:"job"`
	Selected   int       `json:"selected"`
	Settled    int       `json:"settled"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// outcome of a single item
type outcome int

const (
	outcomeSettled outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (r *RunResult) record(o outcome) {
	switch o {
	case outcomeSettled:
		r.Settled++
	case outcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

func (o outcome) label() string {
	switch o {
	case outcomeSettled:
		return metrics.ItemSettled
	case outcomeSkipped:
		return metrics.ItemSkipped
	default:
		return metrics.ItemFailed
	}
}

// RetryPolicy bounds retries of best-effort side effects such as notifications
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy returns the notification retry policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}
}

// Do calls fn until it succeeds, attempts run out, or ctx is done.
// The wait doubles after each failure.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	wait := p.Backoff
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (after %d attempts: %v)", ctx.Err(), attempt, err)
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

type options struct {
	now     func() time.Time
	metrics *metrics.Metrics
	retry   RetryPolicy
}

// Option configures a job
type Option func(*options)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMetrics records item and notification outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRetryPolicy overrides the notification retry policy
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) { o.retry = p }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		retry: DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// guard converts a panic inside one item into an error so the batch continues
func guard(job, itemID string, fn func() (outcome, error)) (o outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.Error("panic while processing item", map[string]any{
				"job":     job,
				"item_id": itemID,
				"panic":   fmt.Sprint(r),
			})
			o, err = outcomeFailed, fmt.Errorf("%s: item %s panicked: %v", job, itemID, r)
		}
	}()
	return fn()
}
