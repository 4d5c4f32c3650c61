// Package dbpool provides a fixed-size pool of pre-established connections
// with blocking, exclusive checkout.
//
// All connections are created when the pool is built; there is no lazy
// growth and no partially built pool. Acquire blocks until a connection is
// free. A caller that never releases starves everyone else, so the pool
// size must exceed the peak number of concurrent database operations.
package dbpool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/pkg/metrics"
)

var (
	// ErrPoolClosed is returned by Acquire once Close has been called.
	ErrPoolClosed = errors.New("connection pool closed")

	// ErrLeasedAtClose is returned by Close when connections were still
	// checked out. Those connections are closed as they are released.
	ErrLeasedAtClose = errors.New("connections still leased at close")
)

// Factory establishes one connection.
type Factory[C io.Closer] func(ctx context.Context) (C, error)

// Handle is exclusive ownership of one pooled connection. The zero Handle is
// valid to pass to Release and does nothing.
type Handle[C io.Closer] struct {
	pool *Pool[C]
	slot int
	gen  uint64
	conn C
}

// Conn returns the underlying connection.
func (h Handle[C]) Conn() C {
	return h.conn
}

// Slot returns the index of the connection inside its pool.
func (h Handle[C]) Slot() int {
	return h.slot
}

// Stats is a point-in-time snapshot. Acquired+Available equals Size while
// the pool is open.
type Stats struct {
	Size      int
	Available int
	Acquired  int
	Waiters   int
}

// Pool owns a fixed slot array of connections. Ownership moves to a caller
// as a Handle carrying the slot index and a per-checkout generation, so a
// stale or duplicate release is detected and ignored.
type Pool[C io.Closer] struct {
	mu      sync.Mutex
	conns   []C
	gens    []uint64
	inUse   []bool
	free    []int
	waiters []chan Handle[C]
	closed  bool
	closing chan struct{}

	// leased counts connections still checked out after Close.
	leased int

	log     *logger.Logger
	metrics metrics.DBPoolMetrics
}

// New creates size connections with factory (size below 1 is coerced to 1).
// If any connection fails, the ones already created are closed and the
// error is returned.
func New[C io.Closer](ctx context.Context, size int, factory Factory[C], log *logger.Logger, m metrics.DBPoolMetrics) (*Pool[C], error) {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = logger.Discard()
	}
	if m == nil {
		m = metrics.NewNoopDBPoolMetrics()
	}

	p := &Pool[C]{
		conns:   make([]C, 0, size),
		gens:    make([]uint64, size),
		inUse:   make([]bool, size),
		free:    make([]int, 0, size),
		closing: make(chan struct{}),
		log:     log,
		metrics: m,
	}

	for i := 0; i < size; i++ {
		conn, err := factory(ctx)
		if err != nil {
			for _, c := range p.conns {
				_ = c.Close()
			}
			return nil, fmt.Errorf("create connection %d of %d: %w", i+1, size, err)
		}
		p.conns = append(p.conns, conn)
		p.free = append(p.free, i)
	}

	m.SetAvailable(size)
	log.Info("Connection pool ready with %d connections", size)
	return p, nil
}

// Acquire blocks until a connection is free, ctx is done, or the pool is
// closed. context.Background() waits indefinitely.
func (p *Pool[C]) Acquire(ctx context.Context) (Handle[C], error) {
	start := time.Now()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Handle[C]{}, ErrPoolClosed
	}

	if len(p.free) > 0 {
		slot := p.free[0]
		p.free = p.free[1:]
		h := p.checkout(slot)
		available := len(p.free)
		p.mu.Unlock()

		p.metrics.SetAvailable(available)
		p.metrics.RecordAcquire(time.Since(start))
		return h, nil
	}

	ch := make(chan Handle[C], 1)
	p.waiters = append(p.waiters, ch)
	p.metrics.SetWaiters(len(p.waiters))
	p.mu.Unlock()

	select {
	case h := <-ch:
		p.metrics.RecordAcquire(time.Since(start))
		return h, nil

	case <-ctx.Done():
		p.abandon(ch)
		return Handle[C]{}, ctx.Err()

	case <-p.closing:
		p.abandon(ch)
		return Handle[C]{}, ErrPoolClosed
	}
}

// abandon removes a waiter that gave up. If a connection was handed to it in
// the meantime, that connection goes back to the pool.
func (p *Pool[C]) abandon(ch chan Handle[C]) {
	p.mu.Lock()
	for i, w := range p.waiters {
		if w == ch {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			p.metrics.SetWaiters(len(p.waiters))
			p.mu.Unlock()
			return
		}
	}
	p.mu.Unlock()

	p.Release(<-ch)
}

// checkout marks slot as owned and returns its handle. Caller holds p.mu.
func (p *Pool[C]) checkout(slot int) Handle[C] {
	p.inUse[slot] = true
	p.gens[slot]++
	return Handle[C]{pool: p, slot: slot, gen: p.gens[slot], conn: p.conns[slot]}
}

// Release returns h to the pool and hands it to the longest waiting
// Acquire, if any. The zero Handle, a handle from another pool and a handle
// already released are ignored.
func (p *Pool[C]) Release(h Handle[C]) {
	if h.pool != p {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if h.slot < 0 || h.slot >= len(p.conns) || !p.inUse[h.slot] || p.gens[h.slot] != h.gen {
		p.log.Debug("Ignoring release of stale connection handle (slot %d)", h.slot)
		return
	}
	p.inUse[h.slot] = false

	if p.closed {
		if err := p.conns[h.slot].Close(); err != nil {
			p.log.Warn("Failed to close connection %d after pool close: %v", h.slot, err)
		}
		p.leased--
		if p.leased == 0 {
			p.log.Info("Last leased connection returned after pool close")
		}
		return
	}

	if len(p.waiters) > 0 {
		ch := p.waiters[0]
		p.waiters = p.waiters[1:]
		p.metrics.SetWaiters(len(p.waiters))
		ch <- p.checkout(h.slot)
		return
	}

	p.free = append(p.free, h.slot)
	p.metrics.SetAvailable(len(p.free))
}

// Stats returns the current counters.
func (p *Pool[C]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	acquired := 0
	for _, used := range p.inUse {
		if used {
			acquired++
		}
	}

	return Stats{
		Size:      len(p.conns),
		Available: len(p.free),
		Acquired:  acquired,
		Waiters:   len(p.waiters),
	}
}

// Close closes every free connection and fails pending and future
// Acquire calls with ErrPoolClosed.
//
// Closing while connections are leased is an ordering bug in the caller:
// Close reports it with ErrLeasedAtClose and closes each such connection when
// it is released. Close is idempotent.
func (p *Pool[C]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.closing)

	var errs []error
	for _, slot := range p.free {
		if err := p.conns[slot].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection %d: %w", slot, err))
		}
	}
	p.free = nil

	for _, used := range p.inUse {
		if used {
			p.leased++
		}
	}
	leased := p.leased
	p.mu.Unlock()

	p.metrics.SetAvailable(0)

	if leased > 0 {
		p.log.Error("Connection pool closed with %d connections still leased", leased)
		errs = append(errs, fmt.Errorf("%w: %d", ErrLeasedAtClose, leased))
	}
	return errors.Join(errs...)
}
