// Package pool runs tasks on a fixed set of goroutines that each own a
// long-lived resource bundle (an open file, a scratch buffer, a hasher)
// instead of receiving one per task.
package pool

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bamsammich/blocksig/internal/fault"
)

var (
	// ErrShutdown is returned by a second call to Shutdown.
	ErrShutdown = fmt.Errorf("%w: pool already shut down", fault.ErrProtocol)
	// ErrClosed is returned when submitting or adding a worker after Shutdown.
	ErrClosed = fmt.Errorf("%w: pool is shut down", fault.ErrProtocol)
	// ErrAbandoned resolves tasks still queued when the pool shut down.
	ErrAbandoned = errors.New("task abandoned at shutdown")
	// ErrPanic wraps a panic raised by a task.
	ErrPanic = errors.New("task panicked")
)

// Option configures a Pool.
type Option func(*options)

type options struct {
	logger *slog.Logger
	name   string
}

// WithLogger sets the logger used for worker lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithName labels the pool in log records.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

type task[R any] struct {
	run     func(res *R)
	abandon func(err error)
}

// Pool executes submitted tasks in FIFO order. Each worker goroutine is
// created with a bundle of type R that only it ever touches; every task the
// worker runs receives a pointer to that bundle.
//
// If *R implements io.Closer, the bundle is closed when its worker exits.
type Pool[R any] struct {
	logger *slog.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []task[R]
	shutdown bool
	workers  int
	busy     int

	wg sync.WaitGroup
}

// New creates a pool with no workers. Add workers with AddWorker.
func New[R any](opts ...Option) *Pool[R] {
	o := options{logger: slog.Default(), name: "pool"}
	for _, opt := range opts {
		opt(&o)
	}
	p := &Pool[R]{logger: o.logger.With("pool", o.name)}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// AddWorker starts one worker that owns res for its whole lifetime. Workers
// may be added before, after or while tasks are submitted.
func (p *Pool[R]) AddWorker(res R) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shutdown {
		return ErrClosed
	}
	id := p.workers
	p.workers++
	p.wg.Add(1)
	go p.worker(id, res)
	return nil
}

// Submit queues fn and returns a handle to its eventual result. It never
// runs fn on the calling goroutine. A failing or panicking fn resolves the
// handle with the error; the worker moves on to the next task.
func Submit[R, T any](p *Pool[R], fn func(res *R) (T, error)) (*Handle[T], error) {
	h := newHandle[T]()
	t := task[R]{
		run: func(res *R) {
			h.resolve(call(fn, res))
		},
		abandon: func(err error) {
			var zero T
			h.resolve(zero, err)
		},
	}

	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	p.queue = append(p.queue, t)
	p.mu.Unlock()

	p.cond.Signal()
	return h, nil
}

func call[R, T any](fn func(res *R) (T, error), res *R) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return fn(res)
}

// Shutdown stops the pool. Running tasks finish; idle workers wake up and
// exit; tasks still queued are resolved with ErrAbandoned. Calling Shutdown
// twice returns ErrShutdown.
func (p *Pool[R]) Shutdown() error {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return ErrShutdown
	}
	p.shutdown = true
	abandoned := p.queue
	p.queue = nil
	p.mu.Unlock()

	p.cond.Broadcast()

	for _, t := range abandoned {
		t.abandon(ErrAbandoned)
	}
	if len(abandoned) > 0 {
		p.logger.Debug("abandoned queued tasks", "count", len(abandoned))
	}
	return nil
}

// Wait blocks until every worker has exited. It only returns after Shutdown.
func (p *Pool[R]) Wait() {
	p.wg.Wait()
}

// Close shuts the pool down if needed and joins all workers.
func (p *Pool[R]) Close() {
	_ = p.Shutdown() //nolint:errcheck // already shut down is fine here
	p.Wait()
}

// Workers returns the number of workers ever added.
func (p *Pool[R]) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// Pending returns the number of queued tasks not yet picked up.
func (p *Pool[R]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Busy returns the number of workers currently running a task.
func (p *Pool[R]) Busy() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

func (p *Pool[R]) worker(id int, res R) {
	defer p.wg.Done()
	defer p.release(id, &res)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker loop panicked", "worker", id, "panic", r)
		}
	}()

	for {
		t, ok := p.next()
		if !ok {
			return
		}
		t.run(&res)

		p.mu.Lock()
		p.busy--
		p.mu.Unlock()
	}
}

// next blocks until a task is available or the pool shuts down.
func (p *Pool[R]) next() (task[R], bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.shutdown {
		p.cond.Wait()
	}
	if p.shutdown {
		return task[R]{}, false
	}

	t := p.queue[0]
	p.queue[0] = task[R]{}
	p.queue = p.queue[1:]
	p.busy++
	return t, true
}

func (p *Pool[R]) release(id int, res *R) {
	c, ok := any(res).(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		p.logger.Warn("close worker resources", "worker", id, "error", err)
	}
}
