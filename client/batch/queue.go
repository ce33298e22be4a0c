// Package batch runs a set of calls on a bounded number of goroutines.
// It backs client.Async.Pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrShutdown is recorded for work started after Shutdown.
var ErrShutdown = errors.New("batch queue shut down")

// WorkFunc is the unit of work run by a Queue.
type WorkFunc func(ctx context.Context) error

// Queue bounds the number of WorkFuncs running at once.
type Queue struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      chan struct{}
	shutdown atomic.Bool
	errs     []error
}

// NewQueue creates a Queue running at most maxConcurrent functions at a
// time. A value <= 0 means no limit.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}
	return q
}

// Wait blocks until every started function returns and reports their
// errors joined.
func (q *Queue) Wait() error {
	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()

	return errors.Join(q.errs...)
}

// Shutdown stops functions that have not acquired a slot yet from running.
// They finish with ErrShutdown.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

// Start runs fn on its own goroutine once a slot is free. A panic in fn
// is recovered and reported as its error.
func (q *Queue) Start(ctx context.Context, fn WorkFunc) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{done: make(chan struct{})}

	q.wg.Add(1)
	go func() {
		defer func() {
			cancel()
			close(h.done)
			q.wg.Done()
		}()

		if q.sem != nil {
			select {
			case q.sem <- struct{}{}:
				defer func() {
					<-q.sem
				}()
			case <-ctx.Done():
				h.err = ctx.Err()
				q.recordErr(h.err)
				return
			}
		}

		if q.shutdown.Load() {
			h.err = ErrShutdown
			q.recordErr(h.err)
			return
		}

		h.err = q.run(ctx, fn)
		if h.err != nil {
			q.recordErr(h.err)
		}
	}()

	return h
}

func (q *Queue) run(ctx context.Context, fn WorkFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return fn(ctx)
}

func (q *Queue) recordErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
}
