package dbpool

import (
	"context"
	"io"
	"sync/atomic"
)

// Lease is a scoped checkout. Defer Release right after Get; calling it
// more than once is harmless.
type Lease[C io.Closer] struct {
	handle   Handle[C]
	released atomic.Bool
}

// Get acquires a connection wrapped in a Lease.
func (p *Pool[C]) Get(ctx context.Context) (*Lease[C], error) {
	h, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Lease[C]{handle: h}, nil
}

// Conn returns the leased connection.
func (l *Lease[C]) Conn() C {
	return l.handle.conn
}

// Release returns the connection to its pool. Safe on a nil Lease.
func (l *Lease[C]) Release() {
	if l == nil {
		return
	}
	if l.released.CompareAndSwap(false, true) {
		l.handle.pool.Release(l.handle)
	}
}

// With runs fn with a leased connection and releases it on every exit path,
// including a panic in fn.
func (p *Pool[C]) With(ctx context.Context, fn func(ctx context.Context, conn C) error) error {
	lease, err := p.Get(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()

	return fn(ctx, lease.Conn())
}
