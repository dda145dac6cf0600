package worker

import "time"

// Option configures a Worker.
type Option func(*Worker)

// WithName sets the worker name used for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithRunTimeout bounds a single aggregation run.
func WithRunTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.runTimeout = d
		}
	}
}

// WithMaxRetries sets how many times a failed job is requeued before the
// cycle is declared failed.
func WithMaxRetries(n int) Option {
	return func(w *Worker) {
		if n >= 0 {
			w.maxRetries = n
		}
	}
}
