// Package worker runs queued jobs one at a time.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/wordle-buddy/internal/adapters/mq/queue"
	"github.com/okian/wordle-buddy/pkg/logger"
	"github.com/okian/wordle-buddy/pkg/metrics"
)

// Handler does the work of a job.
type Handler interface {
	Process(ctx context.Context, j queue.Job) queue.Outcome
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, j queue.Job) queue.Outcome

// Process implements Handler.
func (f HandlerFunc) Process(ctx context.Context, j queue.Job) queue.Outcome { //nolint:gocritic // hugeParam
	return f(ctx, j)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker consumes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand, if any.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is the single consumer of a queue. Each job runs to
// completion before the next is taken.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, h Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		handler:  h,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Drain waits for Run to return after the queue was closed, so every queued
// job still gets an outcome. If ctx expires first the worker is stopped.
func (w *InMemoryWorker) Drain(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return w.Shutdown(context.WithoutCancel(ctx))
	}
}

// process runs one job and always completes it, even if the handler panics.
func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) { //nolint:gocritic // hugeParam
	start := time.Now()
	outcome := queue.Outcome{}
	defer func() {
		if r := recover(); r != nil {
			outcome = queue.Outcome{Err: fmt.Errorf("job %s panicked: %v", j.ID, r)}
			w.logger.Error(ctx, "job panicked",
				logger.String("jobID", j.ID),
				logger.Any("panic", r))
		}
		j.Complete(outcome)
		metrics.RecordJobLatency(float64(time.Since(start).Microseconds()) / 1000)
		metrics.RecordJobProcessed(string(j.Kind))
	}()

	outcome = w.handler.Process(ctx, j)
	if outcome.Err != nil {
		w.logger.Error(ctx, "job failed",
			logger.String("jobID", j.ID),
			logger.String("kind", string(j.Kind)),
			logger.Error(outcome.Err))
	}
}
