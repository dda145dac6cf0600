package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/edlane/primer/internal/domain/model"
	"github.com/edlane/primer/pkg/metrics"
)

// Default memory store configuration constants.
const (
	defaultShardCount            = 8
	defaultMetricsUpdateInterval = 10 * time.Second
)

// shard holds the state for a subset of students. Per-student scoping:
// every operation touches exactly one shard, so runs for different
// students never contend.
type shard struct {
	mu       sync.RWMutex
	events   map[string][]model.AnswerEvent // studentID -> TS-ordered log
	eventKey map[string]struct{}            // studentID|ts|questionID uniqueness
	profiles map[string]model.StudentProfile
}

// MemoryStore is a sharded in-memory Store.
type MemoryStore struct {
	shards                []*shard
	shardCount            int
	metricsUpdateInterval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates an in-memory store and starts its background
// metrics updater, which runs until ctx is canceled or Close is called.
func NewMemoryStore(ctx context.Context, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		shardCount:            defaultShardCount,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopCh:                make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{
			events:   make(map[string][]model.AnswerEvent),
			eventKey: make(map[string]struct{}),
			profiles: make(map[string]model.StudentProfile),
		}
	}

	metrics.UpdateStoreShardCount(s.shardCount)
	go s.startMetricsUpdater(ctx)

	return s
}

func (s *MemoryStore) shardFor(studentID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(studentID))
	return s.shards[int(h.Sum32())%s.shardCount]
}

func eventKey(ev model.AnswerEvent) string {
	return ev.StudentID + "|" + ev.TS.UTC().Format(time.RFC3339Nano) + "|" + ev.QuestionID
}

// AppendEvent records one answer event.
func (s *MemoryStore) AppendEvent(_ context.Context, ev model.AnswerEvent) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(ev.StudentID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	key := eventKey(ev)
	if _, exists := sh.eventKey[key]; exists {
		return ErrDuplicateEvent
	}
	sh.eventKey[key] = struct{}{}

	log := sh.events[ev.StudentID]
	// Common case: events arrive in order, append at the tail.
	if n := len(log); n == 0 || !log[n-1].TS.After(ev.TS) {
		sh.events[ev.StudentID] = append(log, ev)
		return nil
	}
	i := sort.Search(len(log), func(i int) bool { return log[i].TS.After(ev.TS) })
	log = append(log, model.AnswerEvent{})
	copy(log[i+1:], log[i:])
	log[i] = ev
	sh.events[ev.StudentID] = log
	return nil
}

// EventsSince returns events strictly after the watermark, TS ascending.
func (s *MemoryStore) EventsSince(_ context.Context, studentID string, after time.Time) ([]model.AnswerEvent, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(studentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	log := sh.events[studentID]
	i := sort.Search(len(log), func(i int) bool { return log[i].TS.After(after) })
	out := make([]model.AnswerEvent, len(log)-i)
	copy(out, log[i:])
	return out, nil
}

// EventsInRange returns events with from <= TS <= to, TS ascending.
func (s *MemoryStore) EventsInRange(_ context.Context, studentID string, from, to time.Time) ([]model.AnswerEvent, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(studentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	log := sh.events[studentID]
	lo := sort.Search(len(log), func(i int) bool { return !log[i].TS.Before(from) })
	hi := sort.Search(len(log), func(i int) bool { return log[i].TS.After(to) })
	if lo >= hi {
		return []model.AnswerEvent{}, nil
	}
	out := make([]model.AnswerEvent, hi-lo)
	copy(out, log[lo:hi])
	return out, nil
}

// Students lists every student present in the log.
func (s *MemoryStore) Students(_ context.Context) ([]string, error) {
	out := make([]string, 0)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for id := range sh.events {
			out = append(out, id)
		}
		sh.mu.RUnlock()
	}
	sort.Strings(out)
	return out, nil
}

// EventCount returns the total number of stored events.
func (s *MemoryStore) EventCount(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, log := range sh.events {
			total += len(log)
		}
		sh.mu.RUnlock()
	}
	return total
}

// Profile returns the stored profile for a student.
func (s *MemoryStore) Profile(_ context.Context, studentID string) (model.StudentProfile, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(studentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	p, ok := sh.profiles[studentID]
	if !ok {
		return model.StudentProfile{}, ErrNotFound
	}
	return p.Clone(), nil
}

// PutProfile overwrites the stored profile.
func (s *MemoryStore) PutProfile(_ context.Context, profile model.StudentProfile) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(profile.StudentID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.profiles[profile.StudentID] = profile.Clone()
	return nil
}

// ProfileCount returns the number of stored profiles.
func (s *MemoryStore) ProfileCount(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.profiles)
		sh.mu.RUnlock()
	}
	return total
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	return nil
}

// startMetricsUpdater refreshes store gauges periodically.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(s.metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			metrics.UpdateEventsTotal(s.EventCount(ctx))
			metrics.UpdateProfilesTotal(s.ProfileCount(ctx))
		}
	}
}
