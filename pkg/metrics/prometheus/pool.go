package prometheus

import (
	"time"

	"github.com/marmos91/deckd/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type workerPoolMetrics struct {
	queueDepth    prometheus.Gauge
	tasksTotal    *prometheus.CounterVec
	taskDuration  prometheus.Histogram
	tasksRejected prometheus.Counter
}

// NewWorkerPoolMetrics creates Prometheus-backed worker pool metrics.
//
// Returns a no-op implementation if reg is nil.
func NewWorkerPoolMetrics(reg *prometheus.Registry) metrics.WorkerPoolMetrics {
	if reg == nil {
		return metrics.NewNoopWorkerPoolMetrics()
	}

	return &workerPoolMetrics{
		queueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "deckd_workerpool_queue_depth",
				Help: "Number of tasks waiting for a worker",
			},
		),
		tasksTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "deckd_workerpool_tasks_total",
				Help: "Total number of tasks executed by outcome",
			},
			[]string{"outcome"},
		),
		taskDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "deckd_workerpool_task_duration_seconds",
				Help:    "Time spent executing a task",
				Buckets: prometheus.DefBuckets,
			},
		),
		tasksRejected: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "deckd_workerpool_tasks_rejected_total",
				Help: "Total number of submissions rejected after shutdown began",
			},
		),
	}
}

func (m *workerPoolMetrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

func (m *workerPoolMetrics) RecordTaskCompleted(duration time.Duration, panicked bool) {
	outcome := "ok"
	if panicked {
		outcome = "panic"
	}
	m.tasksTotal.WithLabelValues(outcome).Inc()
	m.taskDuration.Observe(duration.Seconds())
}

func (m *workerPoolMetrics) RecordTaskRejected() {
	m.tasksRejected.Inc()
}

type dbPoolMetrics struct {
	available   prometheus.Gauge
	waiters     prometheus.Gauge
	acquireWait prometheus.Histogram
}

// NewDBPoolMetrics creates Prometheus-backed connection pool metrics.
//
// Returns a no-op implementation if reg is nil.
func NewDBPoolMetrics(reg *prometheus.Registry) metrics.DBPoolMetrics {
	if reg == nil {
		return metrics.NewNoopDBPoolMetrics()
	}

	return &dbPoolMetrics{
		available: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "deckd_dbpool_available_connections",
				Help: "Number of pooled database connections currently free",
			},
		),
		waiters: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "deckd_dbpool_waiters",
				Help: "Number of callers blocked waiting for a database connection",
			},
		),
		acquireWait: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "deckd_dbpool_acquire_wait_seconds",
				Help: "Time spent waiting to acquire a database connection",
				Buckets: []float64{
					0.0001, // 100us, connection was free
					0.001,
					0.01,
					0.1,
					1,
					10,
				},
			},
		),
	}
}

func (m *dbPoolMetrics) SetAvailable(available int) {
	m.available.Set(float64(available))
}

func (m *dbPoolMetrics) RecordAcquire(wait time.Duration) {
	m.acquireWait.Observe(wait.Seconds())
}

func (m *dbPoolMetrics) SetWaiters(waiters int) {
	m.waiters.Set(float64(waiters))
}
