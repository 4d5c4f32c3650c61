package metrics

import "time"

// WorkerPoolMetrics observes the task queue consumed by the worker pool.
type WorkerPoolMetrics interface {
	// SetQueueDepth reports the number of tasks waiting for a worker.
	SetQueueDepth(depth int)

	// RecordTaskCompleted records a task that ran to completion (or panicked).
	RecordTaskCompleted(duration time.Duration, panicked bool)

	// RecordTaskRejected counts submissions refused because the pool was closed.
	RecordTaskRejected()
}

// DBPoolMetrics observes the relational connection pool.
type DBPoolMetrics interface {
	// SetAvailable reports the number of connections in the free set.
	SetAvailable(available int)

	// RecordAcquire records how long a caller waited for a connection.
	RecordAcquire(wait time.Duration)

	// SetWaiters reports how many callers are blocked in Acquire.
	SetWaiters(waiters int)
}

// NewNoopWorkerPoolMetrics returns a WorkerPoolMetrics that records nothing.
func NewNoopWorkerPoolMetrics() WorkerPoolMetrics {
	return noopWorkerPoolMetrics{}
}

// NewNoopDBPoolMetrics returns a DBPoolMetrics that records nothing.
func NewNoopDBPoolMetrics() DBPoolMetrics {
	return noopDBPoolMetrics{}
}

type noopWorkerPoolMetrics struct{}

func (noopWorkerPoolMetrics) SetQueueDepth(int)                       {}
func (noopWorkerPoolMetrics) RecordTaskCompleted(time.Duration, bool) {}
func (noopWorkerPoolMetrics) RecordTaskRejected()                     {}

type noopDBPoolMetrics struct{}

func (noopDBPoolMetrics) SetAvailable(int)            {}
func (noopDBPoolMetrics) RecordAcquire(time.Duration) {}
func (noopDBPoolMetrics) SetWaiters(int)              {}
