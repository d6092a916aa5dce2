package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "auction_settlement_"

// Run results
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultOverlap = "skipped_overlap"
	ResultLease   = "skipped_lease"
)

// Item results
const (
	ItemSettled = "settled"
	ItemSkipped = "skipped"
	ItemFailed  = "failed"
)

// Metrics bundles job metrics. A nil *Metrics records nothing.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	ItemsTotal         *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	LastSuccess        *prometheus.GaugeVec
}

// New constructs the metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "job_runs_total",
				Help: "Total job runs by job and result",
			},
			[]string{"job", "result"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "job_duration_seconds",
				Help:    "Job run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
		ItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "items_total",
				Help: "Total processed auctions and proofs by job and result",
			},
			[]string{"job", "result"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notifications_total",
				Help: "Total notification attempts by kind and result",
			},
			[]string{"kind", "result"},
		),
		LastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "job_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run per job",
			},
			[]string{"job"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.RunsTotal,
			m.RunDuration,
			m.ItemsTotal,
			m.NotificationsTotal,
			m.LastSuccess,
		)
	}
	return m
}

// ObserveRun records a finished or skipped run
func (m *Metrics) ObserveRun(job, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(job, result).Inc()
	if result == ResultSuccess || result == ResultError {
		m.RunDuration.WithLabelValues(job).Observe(duration.Seconds())
	}
	if result == ResultSuccess {
		m.LastSuccess.WithLabelValues(job).SetToCurrentTime()
	}
}

// ObserveItem records the outcome of one auction or proof
func (m *Metrics) ObserveItem(job, result string) {
	if m == nil {
		return
	}
	m.ItemsTotal.WithLabelValues(job, result).Inc()
}

// ObserveNotification records a notification delivery outcome
func (m *Metrics) ObserveNotification(kind string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.NotificationsTotal.WithLabelValues(kind, result).Inc()
}
