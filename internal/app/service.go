// Package service provides the core progress-engine service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edlane/primer/internal/adapters/mq/queue"
	"github.com/edlane/primer/internal/adapters/mq/worker"
	"github.com/edlane/primer/internal/adapters/repository"
	"github.com/edlane/primer/internal/calendar"
	"github.com/edlane/primer/internal/domain/aggregate"
	"github.com/edlane/primer/internal/domain/dedupe"
	"github.com/edlane/primer/internal/domain/lesson"
	"github.com/edlane/primer/internal/domain/model"
	"github.com/edlane/primer/internal/domain/style"
	"github.com/edlane/primer/internal/report"
	"github.com/edlane/primer/internal/scheduler"
	"github.com/edlane/primer/internal/tutor"
	"github.com/edlane/primer/pkg/logger"
	"github.com/edlane/primer/pkg/metrics"
)

// Backend names accepted by WithStoreBackend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Service wires the answer log, aggregation pipeline and read models
// together behind one API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	deduper  dedupe.Deduper
	jobQueue queue.Queue
	pool     *worker.Pool
	sched    *scheduler.Scheduler
	catalog  *lesson.Catalog
	cal      *calendar.Calendar
	selector *lesson.Selector
	reporter *report.Builder
	tutor    *tutor.Tutor

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	lessonLimit   int
	storeBackend  string
	sqlitePath    string
	aggInterval   time.Duration
	runTimeout    time.Duration
	maxRetries    int
	tutorProvider tutor.Provider

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    10000,
		dedupeSize:   100000,
		lessonLimit:  5,
		storeBackend: BackendMemory,
		aggInterval:  5 * time.Minute,
		runTimeout:   30 * time.Second,
		maxRetries:   3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting progress engine...")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	store, err := s.openStore(runCtx)
	if err != nil {
		cancel()
		return err
	}
	s.store = store
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
	)

	if s.catalog == nil {
		s.catalog = lesson.DefaultCatalog()
	}
	if s.cal == nil {
		s.cal = calendar.Default()
	}
	s.selector = lesson.NewSelector(s.catalog, s.cal,
		lesson.WithSequenceLimit(s.lessonLimit),
	)
	s.reporter = report.NewBuilder(s.store)
	s.tutor = tutor.New(s.tutorProvider)

	s.pool = worker.NewPool(s.workerCount, s.jobQueue, s,
		worker.WithRunTimeout(s.runTimeout),
		worker.WithMaxRetries(s.maxRetries),
	)
	s.pool.Start(runCtx)

	s.sched = scheduler.New(s.store, s.store, s.jobQueue,
		scheduler.WithInterval(s.aggInterval),
	)
	if err := s.sched.Start(); err != nil {
		cancel()
		return err
	}

	s.started = true
	s.logger.Info(ctx, "progress engine started",
		logger.String("backend", s.storeBackend),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("aggregationInterval", s.aggInterval),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	switch s.storeBackend {
	case BackendSQLite:
		store, err := repository.NewSQLStore(s.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.sqlitePath))
		return store, nil
	case BackendMemory:
		s.logger.Info(ctx, "using in-memory store")
		return repository.NewMemoryStore(ctx), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.storeBackend)
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping progress engine...")

	if s.sched != nil {
		s.sched.Stop()
	}
	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "progress engine stopped")
}

// SubmitAnswer validates and appends one answer event. Replays of an
// already-seen event id or (student, ts, question) key are absorbed and
// reported as ErrDuplicateAnswer; the log never holds an event twice.
func (s *Service) SubmitAnswer(ctx context.Context, ev model.AnswerEvent) (model.AnswerEvent, error) {
	m, ok := model.ParseModality(string(ev.Modality))
	if !ok {
		metrics.RecordAnswerCorrupt()
		return model.AnswerEvent{}, fmt.Errorf("%w: modality %q", ErrInvalidAnswer, ev.Modality)
	}
	ev.Modality = m
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	if err := ev.Validate(); err != nil {
		metrics.RecordAnswerCorrupt()
		return model.AnswerEvent{}, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, ev.EventID) {
		metrics.RecordAnswerDuplicate()
		s.logger.Debug(ctx, "duplicate answer absorbed",
			logger.String("eventID", ev.EventID),
			logger.String("studentID", ev.StudentID),
		)
		return ev, ErrDuplicateAnswer
	}

	if err := s.store.AppendEvent(ctx, ev); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			metrics.RecordAnswerDuplicate()
			return ev, ErrDuplicateAnswer
		}
		// Let a retry of the same event id through once the log is healthy.
		s.deduper.Unrecord(ctx, ev.EventID)
		metrics.RecordErrorByComponent("service", "append")
		return model.AnswerEvent{}, fmt.Errorf("appending answer: %w", err)
	}

	metrics.RecordAnswerIngested()
	metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	return ev, nil
}

// Aggregate folds a student's pending events into their profile and
// refreshes the style vector. Implements the worker pool's aggregator.
func (s *Service) Aggregate(ctx context.Context, studentID string) error {
	prior, err := s.store.Profile(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		prior = model.NewStudentProfile(studentID)
	} else if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	events, err := s.store.EventsSince(ctx, studentID, prior.LastUpdated)
	if err != nil {
		return fmt.Errorf("reading answer log: %w", err)
	}

	folded, stats, err := aggregate.Fold(prior, events)
	if err != nil {
		return err
	}
	if stats.Corrupt > 0 {
		metrics.RecordAnswerCorrupt()
		s.logger.Warn(ctx, "corrupt events skipped during aggregation",
			logger.String("studentID", studentID),
			logger.Int("corrupt", stats.Corrupt),
		)
	}

	folded.Style = map[model.Modality]float64(style.Classify(folded))
	if err := s.store.PutProfile(ctx, folded); err != nil {
		return fmt.Errorf("storing profile: %w", err)
	}

	s.logger.Debug(ctx, "profile aggregated",
		logger.String("studentID", studentID),
		logger.Int("folded", stats.Folded),
		logger.Time("watermark", folded.LastUpdated),
	)
	return nil
}

// RunAggregation scans the answer log once and enqueues pending students,
// the same path the interval trigger takes. Returns the number of jobs
// enqueued.
func (s *Service) RunAggregation(ctx context.Context) (int, error) {
	return s.sched.Trigger(ctx)
}

// LearningStyle returns the stored style vector for a student. Students
// without an aggregated profile get the uniform prior.
func (s *Service) LearningStyle(ctx context.Context, studentID string) (style.Result, error) {
	profile, err := s.store.Profile(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		profile = model.NewStudentProfile(studentID)
	} else if err != nil {
		return style.Result{}, fmt.Errorf("loading profile: %w", err)
	}

	vec := style.Vector(profile.Style)
	if len(vec) == 0 {
		vec = style.Classify(profile)
	}
	return style.Result{
		StudentID:   studentID,
		Style:       vec,
		Dominant:    vec.Dominant(),
		SampleSize:  profile.TotalEvents,
		LastUpdated: profile.LastUpdated,
	}, nil
}

// LessonPlan returns the ranked lesson sequence for a student on a given
// day. Non-instructional days return lesson.ErrNoLessonAvailable.
func (s *Service) LessonPlan(ctx context.Context, studentID, grade string, day time.Time) ([]lesson.Item, error) {
	res, err := s.LearningStyle(ctx, studentID)
	if err != nil {
		return nil, err
	}

	items, err := s.selector.Select(grade, day, res.Style)
	if err != nil {
		return nil, err
	}
	metrics.RecordLessonPlanServed()
	return items, nil
}

// CalendarRange returns calendar entries between from and to inclusive.
func (s *Service) CalendarRange(_ context.Context, from, to time.Time) []calendar.Entry {
	return s.cal.Range(from, to)
}

// IsInstructional reports whether day is a school day.
func (s *Service) IsInstructional(_ context.Context, day time.Time) bool {
	return s.cal.IsInstructional(day)
}

// Report builds a progress report for the student over [from, to].
func (s *Service) Report(ctx context.Context, studentID string, from, to time.Time) (report.Report, error) {
	return s.reporter.Build(ctx, studentID, from, to)
}

// Feedback generates tutor feedback for an answered question.
func (s *Service) Feedback(ctx context.Context, req tutor.Request) (string, error) {
	return s.tutor.Feedback(ctx, req)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"backend":     s.storeBackend,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		profiles := s.store.ProfileCount(ctx)
		events := s.store.EventCount(ctx)

		stats["queueLength"] = queueLen
		stats["totalProfiles"] = profiles
		stats["totalEvents"] = events
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateProfilesTotal(profiles)
		metrics.UpdateEventsTotal(events)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
