package scheduler

import "time"

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets how often the answer log is scanned for pending work.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.every = d
		}
	}
}
