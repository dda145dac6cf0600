// Package config defines service configuration structures and loading hooks.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the storage backend: memory or sqlite.
	StoreBackend string `koanf:"store_backend"`

	// SQLitePath locates the database file for the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`

	// QueueSize bounds the in-memory aggregation job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of aggregation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the answer deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// AggregationIntervalSec is how often the answer log is scanned for
	// pending aggregation work.
	AggregationIntervalSec int `koanf:"aggregation_interval_sec"`

	// RunTimeoutMS bounds a single per-student aggregation run.
	RunTimeoutMS int `koanf:"run_timeout_ms"`

	// MaxRetries is the per-cycle retry budget for failed aggregations.
	MaxRetries int `koanf:"max_retries"`

	// LessonLimit caps how many lessons a daily plan contains.
	LessonLimit int `koanf:"lesson_limit"`

	// CatalogPath overrides the embedded lesson catalog; empty keeps the
	// embedded one.
	CatalogPath string `koanf:"catalog_path"`

	// CalendarPath overrides the embedded school calendar; empty keeps the
	// embedded one.
	CalendarPath string `koanf:"calendar_path"`

	// TutorProvider names the feedback provider: openai or none.
	TutorProvider string `koanf:"tutor_provider"`

	// TutorModel overrides the provider's default model.
	TutorModel string `koanf:"tutor_model"`

	// TutorAPIKey authenticates against the provider.
	TutorAPIKey string `koanf:"tutor_api_key"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		StoreBackend:           "memory",
		SQLitePath:             "primer.db",
		QueueSize:              10_000,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             100_000,
		AggregationIntervalSec: 300,
		RunTimeoutMS:           30_000,
		MaxRetries:             3,
		LessonLimit:            5,
		TutorProvider:          "none",
	}
}
