package workerpool

import (
	"context"
	"fmt"
)

// Future is the pending result of a task submitted with Submit.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit enqueues fn on p and returns a Future for its result.
//
// If fn panics the pool logs the panic as for any task and the Future
// resolves with an error wrapping ErrTaskPanicked.
func Submit[T any](p *Pool, fn func() (T, error)) (*Future[T], error) {
	if fn == nil {
		return nil, fmt.Errorf("nil task")
	}

	f := &Future[T]{done: make(chan struct{})}
	task := func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
				panic(r)
			}
		}()
		f.value, f.err = fn()
	}

	if err := p.enqueue(task); err != nil {
		return nil, err
	}
	return f, nil
}

// Done is closed once the task has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task finishes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
