// Package scheduler triggers periodic aggregation cycles.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/edlane/primer/internal/adapters/mq/queue"
	"github.com/edlane/primer/internal/adapters/repository"
	"github.com/edlane/primer/pkg/logger"
	"github.com/edlane/primer/pkg/metrics"
)

const (
	defaultInterval = 5 * time.Minute
	scanTimeout     = 30 * time.Second
)

// Enqueuer accepts aggregation jobs for the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, j queue.Job) bool
}

// Scheduler scans the answer log on an interval and enqueues one job per
// student with events past their profile watermark.
type Scheduler struct {
	cron  *gocron.Scheduler
	log   repository.EventLog
	prof  repository.ProfileStore
	sink  Enqueuer
	every time.Duration

	logger logger.Logger
}

// New creates a scheduler over the given store and job sink.
func New(log repository.EventLog, prof repository.ProfileStore, sink Enqueuer, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:   gocron.NewScheduler(time.UTC),
		log:    log,
		prof:   prof,
		sink:   sink,
		every:  defaultInterval,
		logger: logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the interval trigger in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(s.every).Do(s.runCycle); err != nil {
		return fmt.Errorf("%w: %v", ErrScheduleFailed, err)
	}
	s.cron.StartAsync()
	s.logger.Info(context.Background(), "aggregation trigger started",
		logger.Duration("interval", s.every),
	)
	return nil
}

// Stop terminates the interval trigger. In-flight jobs keep running on the
// worker pool.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	if _, err := s.Trigger(ctx); err != nil {
		s.logger.Warn(ctx, "aggregation cycle scan failed", logger.Error(err))
	}
}

// Trigger runs one scan immediately and returns how many jobs were enqueued.
// The interval job and on-demand callers share this path.
func (s *Scheduler) Trigger(ctx context.Context) (int, error) {
	students, err := s.log.Students(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("scheduler", "scan")
		return 0, fmt.Errorf("%w: listing students: %v", ErrScanFailed, err)
	}

	now := time.Now().UTC()
	enqueued := 0
	for _, id := range students {
		pending, err := s.hasPending(ctx, id)
		if err != nil {
			s.logger.Warn(ctx, "skipping student in cycle",
				logger.String("studentID", id),
				logger.Error(err),
			)
			continue
		}
		if !pending {
			continue
		}

		if !s.sink.Enqueue(ctx, queue.Job{StudentID: id, RequestedAt: now}) {
			// Queue full or closed: the watermark means nothing is lost,
			// the next cycle picks these students up again.
			s.logger.Warn(ctx, "job rejected by queue, deferring to next cycle",
				logger.String("studentID", id),
			)
			break
		}
		enqueued++
	}

	s.logger.Debug(ctx, "aggregation cycle scanned",
		logger.Int("students", len(students)),
		logger.Int("enqueued", enqueued),
	)
	return enqueued, nil
}

// hasPending reports whether the student has events newer than their
// profile watermark.
func (s *Scheduler) hasPending(ctx context.Context, studentID string) (bool, error) {
	var watermark time.Time
	profile, err := s.prof.Profile(ctx, studentID)
	switch {
	case err == nil:
		watermark = profile.LastUpdated
	case errors.Is(err, repository.ErrNotFound):
		// No profile yet: everything in the log is pending.
	default:
		return false, err
	}

	events, err := s.log.EventsSince(ctx, studentID, watermark)
	if err != nil {
		return false, err
	}
	return len(events) > 0, nil
}
