package lesson

import (
	"sort"
	"time"

	"github.com/edlane/primer/internal/domain/style"
)

// defaultSequenceLimit bounds a day's lesson sequence.
const defaultSequenceLimit = 5

// DayChecker reports whether a date is an instructional day. The school
// calendar satisfies this.
type DayChecker interface {
	IsInstructional(day time.Time) bool
}

// Selector ranks catalog lessons against a style vector.
type Selector struct {
	catalog  *Catalog
	calendar DayChecker
	limit    int
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithSequenceLimit bounds the number of lessons returned per day.
func WithSequenceLimit(limit int) Option {
	return func(s *Selector) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// NewSelector creates a selector over a catalog and a school calendar.
func NewSelector(catalog *Catalog, cal DayChecker, opts ...Option) *Selector {
	s := &Selector{
		catalog:  catalog,
		calendar: cal,
		limit:    defaultSequenceLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select picks the day's lesson sequence for a grade, ranked by modality
// match score descending, tie-broken by lowest difficulty then lexicographic
// lesson id. Returns ErrNoLessonAvailable on non-instructional days.
func (s *Selector) Select(grade string, day time.Time, vec style.Vector) ([]Item, error) {
	if !s.calendar.IsInstructional(day) {
		return nil, ErrNoLessonAvailable
	}

	items, ok := s.catalog.ForGrade(grade)
	if !ok || len(items) == 0 {
		return nil, ErrUnknownGrade
	}

	ranked := make([]Item, len(items))
	copy(ranked, items)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		sa, sb := vec[a.Modality], vec[b.Modality]
		if sa != sb {
			return sa > sb
		}
		if a.Difficulty != b.Difficulty {
			return a.Difficulty < b.Difficulty
		}
		return a.ID < b.ID
	})

	if len(ranked) > s.limit {
		ranked = ranked[:s.limit]
	}
	return ranked, nil
}
