package mirage

import (
	"context"
	"errors"
)

// ErrNotReady is returned by Pending.Result before the operation finished.
var ErrNotReady = errors.New("mirage: result not ready")

// Pending is the completion handle of an operation running in the background.
// It resolves exactly once.
type Pending[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

func (p *Pending[T]) resolve(val T, err error) {
	p.val, p.err = val, err
	close(p.done)
}

// Done is closed once the result is available.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the operation finishes or ctx is done. Cancelling ctx
// stops the wait, not the operation.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking.
func (p *Pending[T]) Result() (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	default:
		var zero T
		return zero, ErrNotReady
	}
}

// Go runs fn on a new goroutine and returns its handle.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Pending[T] {
	p := newPending[T]()
	go func() {
		p.resolve(fn(ctx))
	}()
	return p
}
