package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"auction-settlement/internal/metrics"
	settlement "auction-settlement/internal/settlementService"
	"auction-settlement/internal/settlementerrors"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// blockingJob holds each run open until release is closed
type blockingJob struct {
	name    string
	started chan struct{}
	release chan struct{}
	runs    atomic.Int32
}

func newBlockingJob(name string) *blockingJob {
	return &blockingJob{name: name, started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (j *blockingJob) Name() string { return j.name }

func (j *blockingJob) Run(context.Context) (settlement.RunResult, error) {
	j.runs.Add(1)
	j.started <- struct{}{}
	<-j.release
	return settlement.RunResult{Job: j.name, Selected: 1, Settled: 1}, nil
}

// countingJob returns immediately and counts its runs
type countingJob struct {
	name string
	runs atomic.Int32
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) (settlement.RunResult, error) {
	j.runs.Add(1)
	return settlement.RunResult{Job: j.name}, nil
}

func TestScheduler_Register(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.Register(&countingJob{name: "a"}, time.Minute))
	require.Error(t, s.Register(&countingJob{name: "a"}, time.Minute), "duplicate name")
	require.Error(t, s.Register(&countingJob{name: "b"}, 0), "zero interval")
	require.Error(t, s.Register(nil, time.Minute), "nil job")
}

func TestScheduler_RunNowUnknownJob(t *testing.T) {
	t.Parallel()

	_, err := New().RunNow(context.Background(), "missing")
	require.ErrorIs(t, err, settlementerrors.ErrUnknownJob)
}

func TestScheduler_RunNowRejectsOverlap(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := New(WithMetrics(m))
	job := newBlockingJob("slow")
	require.NoError(t, s.Register(job, time.Hour))

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), "slow")
		done <- err
	}()
	<-job.started
	require.True(t, s.Running("slow"))

	_, err := s.RunNow(context.Background(), "slow")
	require.ErrorIs(t, err, settlementerrors.ErrJobRunning)

	close(job.release)
	require.NoError(t, <-done)
	require.False(t, s.Running("slow"))
	require.Equal(t, int32(1), job.runs.Load())
	require.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("slow", metrics.ResultOverlap)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("slow", metrics.ResultSuccess)))
}

func TestScheduler_Lease(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mockSetup   func(lease *MockLease, job *MockJob, released *atomic.Bool)
		wantErr     error
		wantAnyErr  bool
		wantRelease bool
	}{
		{
			name: "acquired_runs_and_releases",
			mockSetup: func(lease *MockLease, job *MockJob, released *atomic.Bool) {
				lease.EXPECT().TryAcquire(gomock.Any(), "leased").Return(func() { released.Store(true) }, true, nil)
				job.EXPECT().Run(gomock.Any()).Return(settlement.RunResult{Job: "leased"}, nil)
			},
			wantRelease: true,
		},
		{
			name: "held_elsewhere_skips",
			mockSetup: func(lease *MockLease, job *MockJob, released *atomic.Bool) {
				lease.EXPECT().TryAcquire(gomock.Any(), "leased").Return(nil, false, nil)
			},
			wantErr: settlementerrors.ErrLeaseHeld,
		},
		{
			name: "lease_error_skips",
			mockSetup: func(lease *MockLease, job *MockJob, released *atomic.Bool) {
				lease.EXPECT().TryAcquire(gomock.Any(), "leased").Return(nil, false, errors.New("pool closed"))
			},
			wantAnyErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			lease := NewMockLease(ctrl)
			job := NewMockJob(ctrl)
			job.EXPECT().Name().Return("leased").AnyTimes()
			var released atomic.Bool
			tc.mockSetup(lease, job, &released)

			s := New(WithLease(lease))
			require.NoError(t, s.Register(job, time.Hour))

			_, err := s.RunNow(context.Background(), "leased")
			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			case tc.wantAnyErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
			require.Equal(t, tc.wantRelease, released.Load())
		})
	}
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	job := NewMockJob(ctrl)
	job.EXPECT().Name().Return("fragile").AnyTimes()
	gomock.InOrder(
		job.EXPECT().Run(gomock.Any()).DoAndReturn(func(context.Context) (settlement.RunResult, error) {
			panic("nil store")
		}),
		job.EXPECT().Run(gomock.Any()).Return(settlement.RunResult{Job: "fragile"}, nil),
	)

	s := New()
	require.NoError(t, s.Register(job, time.Hour))

	_, err := s.RunNow(context.Background(), "fragile")
	require.ErrorContains(t, err, "panicked")

	_, err = s.RunNow(context.Background(), "fragile")
	require.NoError(t, err)
}

func TestScheduler_StartTicksUntilCancelled(t *testing.T) {
	t.Parallel()

	fast := &countingJob{name: "fast"}
	other := &countingJob{name: "other"}

	s := New()
	require.NoError(t, s.Register(fast, 5*time.Millisecond))
	require.NoError(t, s.Register(other, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool {
		return fast.runs.Load() >= 2 && other.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	require.Error(t, s.Register(&countingJob{name: "late"}, time.Minute))
}

func TestScheduler_TickSkipsWhileRunning(t *testing.T) {
	t.Parallel()

	job := newBlockingJob("slow")
	s := New()
	require.NoError(t, s.Register(job, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(stopped)
	}()

	<-job.started
	// several ticks fire while the first run is held open
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, int32(1), job.runs.Load())

	cancel()
	close(job.release)
	<-stopped
}
