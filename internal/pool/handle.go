package pool

import "context"

// Handle carries the result of one submitted task. It is written exactly once
// by the pool and may be read any number of times once resolved.
type Handle[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newHandle[T any]() *Handle[T] {
	return &Handle[T]{done: make(chan struct{})}
}

func (h *Handle[T]) resolve(v T, err error) {
	h.val, h.err = v, err
	close(h.done)
}

// Done is closed when the result is available.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task has run (or was abandoned) and returns its result.
func (h *Handle[T]) Wait() (T, error) {
	<-h.done
	return h.val, h.err
}

// WaitContext is Wait with cancellation. A cancelled wait leaves the task
// running; its result can still be collected later.
func (h *Handle[T]) WaitContext(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
