package service

import (
	"time"

	"github.com/edlane/primer/internal/calendar"
	"github.com/edlane/primer/internal/domain/lesson"
	"github.com/edlane/primer/internal/tutor"
	"github.com/edlane/primer/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of aggregation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the aggregation job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the answer deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLessonLimit caps how many lessons a daily plan contains.
func WithLessonLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.lessonLimit = limit
		}
	}
}

// WithStoreBackend selects the storage backend, BackendMemory or
// BackendSQLite. SQLite needs a path.
func WithStoreBackend(backend, sqlitePath string) Option {
	return func(s *Service) {
		if backend != "" {
			s.storeBackend = backend
			s.sqlitePath = sqlitePath
		}
	}
}

// WithAggregationInterval sets how often the answer log is scanned for
// pending aggregation work.
func WithAggregationInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.aggInterval = d
		}
	}
}

// WithRunTimeout bounds a single per-student aggregation run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

// WithMaxRetries sets the per-cycle retry budget for failed aggregations.
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithCatalog replaces the embedded lesson catalog.
func WithCatalog(c *lesson.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithCalendar replaces the embedded school calendar.
func WithCalendar(c *calendar.Calendar) Option {
	return func(s *Service) {
		if c != nil {
			s.cal = c
		}
	}
}

// WithTutorProvider sets the model-backed feedback provider. Without one,
// feedback comes from the deterministic fallback.
func WithTutorProvider(p tutor.Provider) Option {
	return func(s *Service) {
		s.tutorProvider = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
