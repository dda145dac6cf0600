// Package repository defines the answer-log and profile store interfaces
// and their in-memory and sqlite implementations.
package repository

import (
	"context"
	"time"

	"github.com/edlane/primer/internal/domain/model"
)

// EventLog is the append-only answer log.
type EventLog interface {
	// AppendEvent records one answer event. Events are immutable once
	// written; re-appending the same (student, ts, question) key returns
	// ErrDuplicateEvent.
	AppendEvent(ctx context.Context, ev model.AnswerEvent) error

	// EventsSince returns a student's events with TS strictly after the
	// given watermark, ordered by TS ascending.
	EventsSince(ctx context.Context, studentID string, after time.Time) ([]model.AnswerEvent, error)

	// EventsInRange returns a student's events with from <= TS <= to,
	// ordered by TS ascending.
	EventsInRange(ctx context.Context, studentID string, from, to time.Time) ([]model.AnswerEvent, error)

	// Students lists every student present in the log.
	Students(ctx context.Context) ([]string, error)

	// EventCount returns the total number of stored events.
	EventCount(ctx context.Context) int
}

// ProfileStore holds the per-student aggregates. Profiles are overwritten,
// never appended.
type ProfileStore interface {
	// Profile returns the stored profile for a student.
	// Returns ErrNotFound if the student has no profile yet.
	Profile(ctx context.Context, studentID string) (model.StudentProfile, error)

	// PutProfile overwrites the stored profile.
	PutProfile(ctx context.Context, profile model.StudentProfile) error

	// ProfileCount returns the number of stored profiles.
	ProfileCount(ctx context.Context) int
}

// Store combines the answer log and profile store behind one backend.
type Store interface {
	EventLog
	ProfileStore

	Close() error
}
