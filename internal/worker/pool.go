// Package worker provides the dispatch pool used for immediate command
// execution: a fixed set of workers draining a FIFO queue, with futures
// for task results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ef-ds/deque"
)

// ErrClosed is returned by futures submitted to a closed pool.
var ErrClosed = errors.New("worker: pool is closed")

// Pool runs submitted tasks on a fixed number of goroutines.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  deque.Deque
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts a pool with the given number of workers, at least one.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.queue.Len() == 0 && !p.closed {
			p.cond.Wait()
		}
		v, ok := p.queue.PopFront()
		p.mu.Unlock()
		if !ok {
			return
		}
		v.(func())()
	}
}

// enqueue adds a task to the queue. Reports false when the pool is
// closed.
func (p *Pool) enqueue(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.queue.PushBack(task)
	p.cond.Signal()
	return true
}

// Close stops accepting tasks, drains the queue, and waits for workers to
// finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}

// Future is the eventually-resolved result of a submitted task.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the result is available or the context ends.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit queues fn on the pool and returns a future for its result. A
// panicking task resolves the future with an error instead of taking the
// worker down.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	ok := p.enqueue(func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("worker: task panicked: %v", r)
			}
		}()
		f.val, f.err = fn()
	})
	if !ok {
		f.err = ErrClosed
		close(f.done)
	}
	return f
}
