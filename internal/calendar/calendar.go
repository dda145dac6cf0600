// Package calendar answers instructional-day lookups against a school
// calendar file.
//
// The calendar file lists exceptions, not every day: dates absent from the
// file fall back to the weekday rule (Monday through Friday instructional,
// weekends not).
package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// Entry is one school calendar record.
type Entry struct {
	Date        string `json:"date"`
	Event       string `json:"event"`
	IsSchoolDay bool   `json:"isSchoolDay"`
}

// Calendar provides instructional-day lookups.
type Calendar struct {
	entries map[string]Entry
}

// New builds a calendar from entries. Later duplicates win.
func New(entries []Entry) (*Calendar, error) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, err := time.Parse(dateLayout, e.Date); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadDate, e.Date)
		}
		m[e.Date] = e
	}
	return &Calendar{entries: m}, nil
}

// Load reads a calendar JSON file: either a bare entry array or an object
// with a "calendar" key, matching the original data file shape.
func Load(path string) (*Calendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return Parse(raw)
}

// Parse decodes calendar JSON.
func Parse(raw []byte) (*Calendar, error) {
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		var wrapped struct {
			Calendar []Entry `json:"calendar"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
		entries = wrapped.Calendar
	}
	return New(entries)
}

// Default returns the embedded sample calendar.
func Default() *Calendar {
	c, err := Parse(defaultCalendar)
	if err != nil {
		// The embedded file is validated by tests.
		panic(fmt.Sprintf("embedded calendar invalid: %v", err))
	}
	return c
}

// IsInstructional reports whether lessons are scheduled on the given day.
func (c *Calendar) IsInstructional(day time.Time) bool {
	if e, ok := c.entries[day.Format(dateLayout)]; ok {
		return e.IsSchoolDay
	}
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// Lookup returns the calendar entry for a day, if one exists.
func (c *Calendar) Lookup(day time.Time) (Entry, bool) {
	e, ok := c.entries[day.Format(dateLayout)]
	return e, ok
}

// Range returns entries within [from, to] ordered by date.
func (c *Calendar) Range(from, to time.Time) []Entry {
	lo := from.Format(dateLayout)
	hi := to.Format(dateLayout)
	out := make([]Entry, 0)
	for date, e := range c.entries {
		if date >= lo && date <= hi {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Len returns the number of exception entries.
func (c *Calendar) Len() int {
	return len(c.entries)
}
