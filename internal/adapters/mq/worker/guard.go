package worker

import "sync"

// InflightGuard enforces at most one concurrent aggregation run per
// student. Runs for different students proceed in parallel.
type InflightGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewInflightGuard creates an empty guard.
func NewInflightGuard() *InflightGuard {
	return &InflightGuard{inflight: make(map[string]struct{})}
}

// TryAcquire claims the student for a run. Returns false if a run for the
// same student is already in flight.
func (g *InflightGuard) TryAcquire(studentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.inflight[studentID]; held {
		return false
	}
	g.inflight[studentID] = struct{}{}
	return true
}

// Release frees the student after a run.
func (g *InflightGuard) Release(studentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, studentID)
}

// Count returns the number of students currently claimed.
func (g *InflightGuard) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
