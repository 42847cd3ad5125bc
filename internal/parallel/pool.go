// Package parallel runs independent tasks with a bounded number in flight.
package parallel

import (
	"errors"
	"runtime"
	"sync/atomic"
)

// ErrPoolClosed is returned by Go after Wait has been called.
var ErrPoolClosed = errors.New("parallel: pool closed")

// task is one dispatched unit of work. done is closed once err is set.
type task struct {
	done chan struct{}
	err  error
}

// Pool dispatches tasks in order and keeps at most Limit of them running.
// When the limit is reached, Go waits for the oldest outstanding task
// before starting the next one. Results are observed in dispatch order.
//
// A limit of 1 runs every task synchronously on the caller's goroutine.
//
// The first error, in dispatch order, is kept. Once a task has failed, Go
// stops dispatching and returns that error; the caller must still call Wait
// to let tasks already running finish.
//
// Thread safety: a Pool is driven by a single goroutine. Tasks themselves
// run concurrently and must not share mutable state except through disjoint
// regions.
type Pool struct {
	limit   int
	pending []*task
	err     error
	closed  atomic.Bool

	dispatched atomic.Int64
}

// NewPool returns a pool running at most limit tasks at once.
// If limit is 0 or negative, GOMAXPROCS is used.
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Pool{limit: limit}
}

// Limit returns the maximum number of tasks in flight.
func (p *Pool) Limit() int {
	return p.limit
}

// Dispatched returns the number of tasks started so far.
func (p *Pool) Dispatched() int {
	return int(p.dispatched.Load())
}

// Go starts fn, first waiting for the oldest outstanding task if the pool is
// saturated. It returns the first task error seen so far.
func (p *Pool) Go(fn func() error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if p.err != nil {
		return p.err
	}

	if p.limit == 1 {
		p.dispatched.Add(1)
		p.err = fn()
		return p.err
	}

	for len(p.pending) >= p.limit {
		if err := p.waitOldest(); err != nil {
			return err
		}
	}

	t := &task{done: make(chan struct{})}
	p.pending = append(p.pending, t)
	p.dispatched.Add(1)
	go func() {
		defer close(t.done)
		t.err = fn()
	}()
	return nil
}

// waitOldest blocks on the oldest outstanding task and records its error.
func (p *Pool) waitOldest() error {
	t := p.pending[0]
	p.pending[0] = nil
	p.pending = p.pending[1:]
	<-t.done
	if t.err != nil && p.err == nil {
		p.err = t.err
	}
	return p.err
}

// Wait blocks until every dispatched task has finished and returns the first
// error in dispatch order. The pool accepts no more tasks afterwards.
func (p *Pool) Wait() error {
	p.closed.Store(true)
	for len(p.pending) > 0 {
		_ = p.waitOldest()
	}
	return p.err
}
