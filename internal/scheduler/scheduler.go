package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"auction-settlement/internal/metrics"
	settlement "auction-settlement/internal/settlementService"
	"auction-settlement/internal/settlementerrors"
	"auction-settlement/utils"
)

//go:generate mockgen -source=scheduler.go -destination=mock_scheduler.go -package=scheduler

// Job is one settlement batch that can be run repeatedly
type Job interface {
	Name() string
	Run(ctx context.Context) (settlement.RunResult, error)
}

// Lease grants at most one active holder per name across processes
type Lease interface {
	TryAcquire(ctx context.Context, name string) (release func(), ok bool, err error)
}

type entry struct {
	job      Job
	interval time.Duration
	running  atomic.Bool
}

// Scheduler runs each registered job on its own fixed interval. A job never
// overlaps itself; distinct jobs run concurrently.
type Scheduler struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	started bool

	lease   Lease
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLease requires a lease before every run
func WithLease(lease Lease) Option {
	return func(s *Scheduler) { s.lease = lease }
}

// WithMetrics records run outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates an empty Scheduler
func New(opts ...Option) *Scheduler {
	s := &Scheduler{entries: make(map[string]*entry)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job. It must be called before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	if job == nil {
		return errors.New("scheduler: nil job")
	}
	if interval <= 0 {
		return fmt.Errorf("scheduler: job %s: interval must be positive, got %s", job.Name(), interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler: job %s registered after start", job.Name())
	}
	if _, exists := s.entries[job.Name()]; exists {
		return fmt.Errorf("scheduler: job %s already registered", job.Name())
	}
	s.entries[job.Name()] = &entry{job: job, interval: interval}
	s.order = append(s.order, job.Name())
	return nil
}

// Start drives every registered job until ctx is cancelled, then waits for
// in-flight runs to finish
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.started = true
	entries := make([]*entry, 0, len(s.order))
	for _, name := range s.order {
		entries = append(entries, s.entries[name])
	}
	s.mu.Unlock()

	for _, e := range entries {
		utils.Info("scheduler job registered", map[string]any{
			"job":      e.job.Name(),
			"interval": e.interval.String(),
		})
		s.wg.Add(1)
		go s.loop(ctx, e)
	}

	<-ctx.Done()
	s.wg.Wait()
	utils.Info("scheduler stopped", nil)
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.tick(context.WithoutCancel(ctx), e)
			}()
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, e *entry) {
	_, err := s.execute(ctx, e)
	switch {
	case err == nil:
	case errors.Is(err, settlementerrors.ErrJobRunning):
		utils.Warn("previous run still in progress, tick skipped", map[string]any{"job": e.job.Name()})
	case errors.Is(err, settlementerrors.ErrLeaseHeld):
		utils.Debug("lease held elsewhere, tick skipped", map[string]any{"job": e.job.Name()})
	default:
		utils.Error("scheduled run failed", map[string]any{
			"job":   e.job.Name(),
			"error": err.Error(),
		})
	}
}

// RunNow runs one batch of the named job synchronously through the same
// overlap guard and lease as scheduled ticks
func (s *Scheduler) RunNow(ctx context.Context, name string) (settlement.RunResult, error) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return settlement.RunResult{}, fmt.Errorf("scheduler: %w - %s", settlementerrors.ErrUnknownJob, name)
	}
	return s.execute(ctx, e)
}

// Running reports whether the named job has a run in progress
func (s *Scheduler) Running(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return ok && e.running.Load()
}

func (s *Scheduler) execute(ctx context.Context, e *entry) (settlement.RunResult, error) {
	name := e.job.Name()
	if !e.running.CompareAndSwap(false, true) {
		s.metrics.ObserveRun(name, metrics.ResultOverlap, 0)
		return settlement.RunResult{Job: name}, fmt.Errorf("scheduler: %w - %s", settlementerrors.ErrJobRunning, name)
	}
	defer e.running.Store(false)

	if s.lease != nil {
		release, acquired, err := s.lease.TryAcquire(ctx, name)
		if err != nil {
			s.metrics.ObserveRun(name, metrics.ResultError, 0)
			return settlement.RunResult{Job: name}, fmt.Errorf("scheduler: acquire lease for %s: %w", name, err)
		}
		if !acquired {
			s.metrics.ObserveRun(name, metrics.ResultLease, 0)
			return settlement.RunResult{Job: name}, fmt.Errorf("scheduler: %w - %s", settlementerrors.ErrLeaseHeld, name)
		}
		defer release()
	}

	start := time.Now()
	result, err := runSafely(ctx, e.job)
	if err != nil {
		s.metrics.ObserveRun(name, metrics.ResultError, time.Since(start))
		return result, err
	}
	s.metrics.ObserveRun(name, metrics.ResultSuccess, time.Since(start))
	return result, nil
}

// runSafely turns a panic escaping the job into an error
func runSafely(ctx context.Context, job Job) (result settlement.RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduler: job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(ctx)
}
