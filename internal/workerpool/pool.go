// Package workerpool runs submitted tasks on a fixed set of goroutines that
// consume one shared FIFO queue.
//
// Shutdown drains: tasks already queued when Shutdown is called still run to
// completion before Shutdown returns. Only submissions made after shutdown
// has begun are rejected, with ErrPoolClosed.
package workerpool

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/pkg/metrics"
)

var (
	// ErrPoolClosed is returned by submissions made after Shutdown has begun.
	ErrPoolClosed = errors.New("worker pool closed")

	// ErrTaskPanicked resolves a Future whose task panicked.
	ErrTaskPanicked = errors.New("task panicked")
)

// Stats is a point-in-time snapshot of the pool.
type Stats struct {
	Workers   int
	Queued    int
	Running   int
	Completed uint64
	Panicked  uint64
}

// Pool is a fixed-size worker group. The zero value is not usable; use New.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool

	workers   int
	running   int
	completed uint64
	panicked  uint64

	wg      sync.WaitGroup
	log     *logger.Logger
	metrics metrics.WorkerPoolMetrics
}

// New starts a pool with the given number of workers. A count below 1 is
// coerced to 1. log and m may be nil.
func New(workers int, log *logger.Logger, m metrics.WorkerPoolMetrics) *Pool {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.NewNoopWorkerPoolMetrics()
	}

	p := &Pool{
		workers: workers,
		log:     log,
		metrics: m,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	log.Debug("worker pool started with %d workers", workers)
	return p
}

// SubmitDetached enqueues a task whose outcome nobody waits for.
func (p *Pool) SubmitDetached(task func()) error {
	if task == nil {
		return errors.New("nil task")
	}
	return p.enqueue(task)
}

func (p *Pool) enqueue(task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.metrics.RecordTaskRejected()
		return ErrPoolClosed
	}
	p.queue = append(p.queue, task)
	depth := len(p.queue)
	p.mu.Unlock()

	p.cond.Signal()
	p.metrics.SetQueueDepth(depth)
	return nil
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// Closed and drained.
			p.mu.Unlock()
			p.log.Debug("worker %d exiting", id)
			return
		}

		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.running++
		depth := len(p.queue)
		p.mu.Unlock()

		p.metrics.SetQueueDepth(depth)

		start := time.Now()
		panicked := p.execute(id, task)
		p.metrics.RecordTaskCompleted(time.Since(start), panicked)

		p.mu.Lock()
		p.running--
		p.completed++
		if panicked {
			p.panicked++
		}
		p.mu.Unlock()
	}
}

// execute runs one task, containing any panic so the worker keeps looping.
func (p *Pool) execute(id int, task func()) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			p.log.Error("worker %d: task panicked: %v\n%s", id, r, debug.Stack())
		}
	}()

	task()
	return false
}

// Shutdown stops accepting new tasks, waits for every queued task to finish
// and for all workers to exit. It is safe to call more than once; every
// caller blocks until the drain completes.
//
// Calling Shutdown from inside a task deadlocks.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.log.Debug("worker pool shutting down, %d tasks queued", len(p.queue))
	}
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

// ShutdownContext is Shutdown bounded by ctx. When ctx expires first the
// drain keeps going in the background and ctx.Err() is returned.
func (p *Pool) ShutdownContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Workers:   p.workers,
		Queued:    len(p.queue),
		Running:   p.running,
		Completed: p.completed,
		Panicked:  p.panicked,
	}
}
