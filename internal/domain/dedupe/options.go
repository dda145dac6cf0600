// Package dedupe tracks already-seen answer event ids.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of ids to keep in memory.
// With maxSize > 0 the cache is bounded with FIFO eviction; with
// maxSize <= 0 it grows without limit.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
