package lesson

import "errors"

// Sentinel kinds for lesson selection errors.
var (
	// ErrNoLessonAvailable signals a non-instructional calendar day.
	ErrNoLessonAvailable = errors.New("no lessons scheduled for this day")
	ErrUnknownGrade      = errors.New("no lessons for grade")
	ErrBadCatalog        = errors.New("invalid lesson catalog")
)
