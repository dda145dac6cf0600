// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"strings"
	"time"
)

// Modality is the sensory channel of a lesson or question.
type Modality string

// Known modalities. The original catalog tags hands-on material as
// kinesthetic.
const (
	ModalityVisual      Modality = "visual"
	ModalityAuditory    Modality = "auditory"
	ModalityKinesthetic Modality = "kinesthetic"
)

// Modalities returns the fixed modality set in stable order.
func Modalities() []Modality {
	return []Modality{ModalityVisual, ModalityAuditory, ModalityKinesthetic}
}

// ParseModality normalizes a modality tag. Legacy "hands-on" maps to
// kinesthetic.
func ParseModality(s string) (Modality, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "visual":
		return ModalityVisual, true
	case "auditory", "audio":
		return ModalityAuditory, true
	case "kinesthetic", "hands-on", "hands_on":
		return ModalityKinesthetic, true
	}
	return "", false
}

// AnswerEvent is one immutable record in the append-only answer log.
// Uniquely identified by (StudentID, TS, QuestionID); EventID carries the
// client-supplied idempotency key.
type AnswerEvent struct {
	EventID    string    `db:"event_id"`
	StudentID  string    `db:"student_id"`
	QuestionID string    `db:"question_id"`
	Subject    string    `db:"subject"`
	Correct    bool      `db:"correct"`
	LatencyMS  int64     `db:"latency_ms"`
	Modality   Modality  `db:"modality"`
	TS         time.Time `db:"ts"`
}

// Validate reports whether the event is well formed. Malformed events are
// skipped and counted during aggregation, never fatal.
func (e AnswerEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.StudentID) == "":
		return errors.New("missing student id")
	case strings.TrimSpace(e.QuestionID) == "":
		return errors.New("missing question id")
	case strings.TrimSpace(e.Subject) == "":
		return errors.New("missing subject")
	case e.TS.IsZero():
		return errors.New("missing timestamp")
	case e.LatencyMS < 0:
		return errors.New("negative latency")
	}
	if _, ok := ParseModality(string(e.Modality)); !ok {
		return errors.New("unknown modality")
	}
	return nil
}

// AggregationJob asks the worker pool to fold a student's new answer events
// into their profile.
type AggregationJob struct {
	StudentID   string
	RequestedAt time.Time
	Attempt     int
}
