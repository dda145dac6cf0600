package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/edlane/primer/internal/domain/model"
)

// SQLStore is a sqlite-backed Store for deployments that need the answer
// log and profiles to survive restarts.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore opens (or creates) the sqlite database at path and ensures
// the schema exists.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	// sqlite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS answer_events (
			event_id    TEXT NOT NULL,
			student_id  TEXT NOT NULL,
			question_id TEXT NOT NULL,
			subject     TEXT NOT NULL,
			correct     BOOLEAN NOT NULL,
			latency_ms  INTEGER NOT NULL,
			modality    TEXT NOT NULL,
			ts          TIMESTAMP NOT NULL,
			PRIMARY KEY (student_id, ts, question_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: create answer_events: %v", ErrBackend, err)
	}

	_, err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_answer_events_student_ts
		ON answer_events (student_id, ts)
	`)
	if err != nil {
		return fmt.Errorf("%w: index answer_events: %v", ErrBackend, err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS student_profiles (
			student_id   TEXT PRIMARY KEY,
			payload      TEXT NOT NULL,
			last_updated TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: create student_profiles: %v", ErrBackend, err)
	}
	return nil
}

// AppendEvent records one answer event.
func (s *SQLStore) AppendEvent(ctx context.Context, ev model.AnswerEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answer_events
			(event_id, student_id, question_id, subject, correct, latency_ms, modality, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.StudentID, ev.QuestionID, ev.Subject, ev.Correct,
		ev.LatencyMS, string(ev.Modality), ev.TS.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("%w: append event: %v", ErrBackend, err)
	}
	return nil
}

// EventsSince returns events strictly after the watermark, TS ascending.
func (s *SQLStore) EventsSince(ctx context.Context, studentID string, after time.Time) ([]model.AnswerEvent, error) {
	var out []model.AnswerEvent
	err := s.db.SelectContext(ctx, &out, `
		SELECT event_id, student_id, question_id, subject, correct, latency_ms, modality, ts
		FROM answer_events
		WHERE student_id = ? AND ts > ?
		ORDER BY ts ASC`,
		studentID, after.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: events since: %v", ErrBackend, err)
	}
	return out, nil
}

// EventsInRange returns events with from <= TS <= to, TS ascending.
func (s *SQLStore) EventsInRange(ctx context.Context, studentID string, from, to time.Time) ([]model.AnswerEvent, error) {
	var out []model.AnswerEvent
	err := s.db.SelectContext(ctx, &out, `
		SELECT event_id, student_id, question_id, subject, correct, latency_ms, modality, ts
		FROM answer_events
		WHERE student_id = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC`,
		studentID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: events in range: %v", ErrBackend, err)
	}
	return out, nil
}

// Students lists every student present in the log.
func (s *SQLStore) Students(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out, `
		SELECT DISTINCT student_id FROM answer_events ORDER BY student_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: students: %v", ErrBackend, err)
	}
	return out, nil
}

// EventCount returns the total number of stored events.
func (s *SQLStore) EventCount(ctx context.Context) int {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM answer_events`); err != nil {
		return 0
	}
	return count
}

// Profile returns the stored profile for a student.
func (s *SQLStore) Profile(ctx context.Context, studentID string) (model.StudentProfile, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload, `
		SELECT payload FROM student_profiles WHERE student_id = ?`, studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StudentProfile{}, ErrNotFound
	}
	if err != nil {
		return model.StudentProfile{}, fmt.Errorf("%w: get profile: %v", ErrBackend, err)
	}

	var p model.StudentProfile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return model.StudentProfile{}, fmt.Errorf("%w: decode profile: %v", ErrBackend, err)
	}
	return p, nil
}

// PutProfile overwrites the stored profile.
func (s *SQLStore) PutProfile(ctx context.Context, profile model.StudentProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("%w: encode profile: %v", ErrBackend, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO student_profiles (student_id, payload, last_updated)
		VALUES (?, ?, ?)
		ON CONFLICT (student_id) DO UPDATE SET
			payload = excluded.payload,
			last_updated = excluded.last_updated`,
		profile.StudentID, string(payload), profile.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: put profile: %v", ErrBackend, err)
	}
	return nil
}

// ProfileCount returns the number of stored profiles.
func (s *SQLStore) ProfileCount(ctx context.Context) int {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM student_profiles`); err != nil {
		return 0
	}
	return count
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
