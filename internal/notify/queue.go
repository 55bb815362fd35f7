// Package notify delivers best-effort side effects (push notifications,
// events, search indexing) off the request path.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of outbound work. Its error is logged, never returned to
// whoever submitted it.
type Task func(ctx context.Context) error

type job struct {
	name string
	fn   Task
}

// Queue runs submitted tasks on a fixed pool of workers.
type Queue struct {
	jobs    chan job
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(workers, size int, timeout time.Duration, log *zap.Logger) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	q := &Queue{
		jobs:    make(chan job, size),
		timeout: timeout,
		log:     log,
	}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

// Submit enqueues fn without blocking. It reports false when the queue is
// full or closed; the task is then dropped.
func (q *Queue) Submit(name string, fn Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.log.Warn("outbound task dropped: queue closed", zap.String("task", name))
		return false
	}
	select {
	case q.jobs <- job{name: name, fn: fn}:
		return true
	default:
		q.log.Warn("outbound task dropped: queue full", zap.String("task", name))
		return false
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.run(j)
	}
}

func (q *Queue) run(j job) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	start := time.Now()
	err := safeCall(ctx, j.fn)
	if err != nil {
		q.log.Error("outbound task failed",
			zap.String("task", j.name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}
	q.log.Debug("outbound task done", zap.String("task", j.name), zap.Duration("elapsed", time.Since(start)))
}

func safeCall(ctx context.Context, fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}
