package database

import (
	"context"
	"time"
)

// AwaitHandle is the pending result of an asynchronous call.
type AwaitHandle[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Resolved returns an already completed handle.
func Resolved[T any](value T) *AwaitHandle[T] {
	h := &AwaitHandle[T]{done: make(chan struct{}), value: value}
	close(h.done)
	return h
}

// Failed returns an already completed handle carrying err.
func Failed[T any](err error) *AwaitHandle[T] {
	h := &AwaitHandle[T]{done: make(chan struct{}), err: err}
	close(h.done)
	return h
}

// Go runs fn on its own goroutine.
func Go[T any](fn func() (T, error)) *AwaitHandle[T] {
	h := &AwaitHandle[T]{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.value, h.err = fn()
	}()
	return h
}

// Await blocks until the call completes or ctx is done. A completed result wins over a
// cancelled context.
func (h *AwaitHandle[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.value, h.err
	default:
	}

	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (h *AwaitHandle[T]) AwaitTimeout(timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return h.Await(ctx)
}

// Done is closed once the result is available.
func (h *AwaitHandle[T]) Done() <-chan struct{} { return h.done }
