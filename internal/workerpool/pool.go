// Package workerpool provides a bounded pool for blocking work.
//
// The pool is constructed once by the composition root and passed by
// reference to whatever needs it; there is no ambient global executor.
// Lifecycle: created at service start, closed at service stop.
package workerpool

import (
	"context"
	"fmt"
	"sync"
)

// DefaultSize is the default number of workers.
const DefaultSize = 4

type task struct {
	fn   func() error
	done chan error
}

// Pool runs submitted functions on a fixed set of worker goroutines,
// bounding the amount of blocking work in flight.
type Pool struct {
	size      int
	tasks     chan task
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a pool with the given number of workers. Sizes below one
// fall back to DefaultSize.
func New(size int) *Pool {
	if size < 1 {
		size = DefaultSize
	}

	p := &Pool{
		size:  size,
		tasks: make(chan task),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit dispatches fn to a worker and blocks until it completes, returning
// fn's error. If ctx is cancelled before a worker picks the task up or
// while it runs, Submit returns the context error; the task itself is not
// interrupted once started.
func (p *Pool) Submit(ctx context.Context, fn func() error) error {
	t := task{fn: fn, done: make(chan error, 1)}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for running tasks to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		t.done <- runTask(t.fn)
	}
}

// runTask converts a panicking task into an error so one bad question
// cannot take a worker down.
func runTask(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return fn()
}
