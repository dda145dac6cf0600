// Package worker runs scheduled aggregation jobs against student profiles.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/edlane/primer/internal/adapters/mq/queue"
	"github.com/edlane/primer/internal/domain/aggregate"
	"github.com/edlane/primer/pkg/logger"
	"github.com/edlane/primer/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout       = 30 * time.Second
	defaultMaxRetries       = 3
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
	inflightGaugeInterval   = 5 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Aggregator folds a student's pending answer events into their profile.
// The service layer implements this over the store and classifier.
type Aggregator interface {
	Aggregate(ctx context.Context, studentID string) error
}

// Queue defines how workers receive jobs and requeue retries.
type Queue interface {
	Enqueue(ctx context.Context, j Job) bool
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes aggregation jobs with per-student exclusivity, a run
// timeout, and a bounded retry budget.
type Worker struct {
	queue      Queue
	aggregator Aggregator
	guard      *InflightGuard
	name       string

	runTimeout time.Duration
	maxRetries int

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, agg Aggregator, guard *InflightGuard, opts ...Option) *Worker {
	w := &Worker{
		queue:      q,
		aggregator: agg,
		guard:      guard,
		name:       "worker",
		runTimeout: defaultRunTimeout,
		maxRetries: defaultMaxRetries,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job)
		}
	}
}

// Shutdown stops the worker, waiting for the in-progress job.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob runs one aggregation with exclusivity, timeout and retries.
func (w *Worker) processJob(ctx context.Context, job Job) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	// At most one concurrent run per student. A held student means a run
	// is already folding this student's window; the watermark makes the
	// next cycle pick up whatever that run misses.
	if !w.guard.TryAcquire(job.StudentID) {
		w.logger.Debug(ctx, "aggregation already in flight, dropping job",
			logger.String("studentID", job.StudentID),
		)
		return
	}
	defer w.guard.Release(job.StudentID)

	runCtx, cancel := context.WithTimeout(ctx, w.runTimeout)
	defer cancel()

	err := w.aggregator.Aggregate(runCtx, job.StudentID)
	switch {
	case err == nil:
		metrics.RecordAggregationRun()
		metrics.RecordAggregationLatency(float64(time.Since(start).Milliseconds()))

	case errors.Is(err, aggregate.ErrInsufficientData):
		// Empty window: non-fatal, the prior profile stands.
		metrics.RecordAggregationSkip()

	default:
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", errorType(err))
		w.retry(ctx, job, err)
	}
}

// retry requeues the job or, past the retry budget, surfaces the failure
// and leaves the prior profile untouched.
func (w *Worker) retry(ctx context.Context, job Job, cause error) {
	if job.Attempt >= w.maxRetries {
		metrics.RecordAggregationFailure()
		w.logger.Error(ctx, "aggregation failed for cycle, retries exhausted",
			logger.String("studentID", job.StudentID),
			logger.Int("attempts", job.Attempt+1),
			logger.Error(cause),
		)
		return
	}

	metrics.RecordAggregationRetry()
	next := Job{
		StudentID:   job.StudentID,
		RequestedAt: job.RequestedAt,
		Attempt:     job.Attempt + 1,
	}
	if !w.queue.Enqueue(ctx, next) {
		metrics.RecordAggregationFailure()
		w.logger.Error(ctx, "retry enqueue rejected, aggregation failed for cycle",
			logger.String("studentID", job.StudentID),
			logger.Error(cause),
		)
		return
	}
	w.logger.Warn(ctx, "aggregation run failed, retrying",
		logger.String("studentID", job.StudentID),
		logger.Int("attempt", next.Attempt),
		logger.Error(cause),
	)
}

func errorType(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "aggregation_error"
}

// Pool manages multiple workers sharing one inflight guard.
type Pool struct {
	workers []*Worker
	guard   *InflightGuard

	shutdown     chan struct{}
	shutdownOnce sync.Once

	logger logger.Logger
}

// NewPool creates a worker pool. Options apply to every worker.
func NewPool(workerCount int, q Queue, agg Aggregator, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	guard := NewInflightGuard()
	pool := &Pool{
		workers:  make([]*Worker, workerCount),
		guard:    guard,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewWorker(q, agg, guard, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerInflightStudents(0)

	return pool
}

// Start starts all workers and the inflight gauge updater.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startGaugeUpdater(ctx)
}

func (p *Pool) startGaugeUpdater(ctx context.Context) {
	ticker := time.NewTicker(inflightGaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			metrics.UpdateWorkerInflightStudents(p.guard.Count())
		}
	}
}

// Stop stops all workers, waiting briefly for each.
func (p *Pool) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()
	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
}

// Shutdown drains the queue and stops all workers within a bound.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.workers[0].queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.shutdownOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
