// Package tasks runs fire-and-forget background work on a fixed pool of
// workers. Submitting never blocks the caller; the returned Handle reports
// completion.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrQueueClosed = errors.New("task queue is closed")
)

// Job is a unit of background work.
type Job func(ctx context.Context) error

// Handle tracks one submitted job.
type Handle struct {
	name string
	done chan struct{}
	err  error
}

func newHandle(name string) *Handle {
	return &Handle{name: name, done: make(chan struct{})}
}

func (h *Handle) finish(err error) {
	h.err = err
	close(h.done)
}

// Name returns the name the job was submitted with.
func (h *Handle) Name() string {
	return h.name
}

// Done is closed once the job has finished or was rejected.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the job's result. It is only meaningful after Done is closed.
func (h *Handle) Err() error {
	<-h.done
	return h.err
}

// Wait blocks until the job finishes or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type task struct {
	job    Job
	handle *Handle
}

// Queue is a bounded in-memory job queue.
type Queue struct {
	tasks  chan task
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts workers goroutines reading from a buffer of size capacity.
func NewQueue(workers, capacity int, logger *slog.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		tasks:  make(chan task, capacity),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}

	logger.Info("Task queue started", "workers", workers, "capacity", capacity)
	return q
}

// Submit enqueues job without blocking. A full or closed queue completes
// the returned handle immediately with ErrQueueFull or ErrQueueClosed.
func (q *Queue) Submit(name string, job Job) *Handle {
	h := newHandle(name)

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		h.finish(ErrQueueClosed)
		return h
	}

	select {
	case q.tasks <- task{job: job, handle: h}:
	default:
		q.logger.Warn("Task dropped", "name", name, "error", ErrQueueFull)
		h.finish(ErrQueueFull)
	}
	return h
}

func (q *Queue) work() {
	defer q.wg.Done()
	for t := range q.tasks {
		t.handle.finish(q.run(t))
	}
}

func (q *Queue) run(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.handle.name, r)
		}
		if err != nil {
			q.logger.Error("Task failed", "name", t.handle.name, "error", err)
		}
	}()
	return t.job(q.ctx)
}

// Close stops accepting jobs and waits for queued ones to finish. If ctx
// expires first, running jobs see their context cancelled.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		q.cancel()
		q.logger.Info("Task queue drained")
		return nil
	case <-ctx.Done():
		q.cancel()
		return fmt.Errorf("task queue did not drain: %w", ctx.Err())
	}
}
