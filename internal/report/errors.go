package report

import "errors"

var (
	// ErrEmptyRange indicates the student has no answers in the period.
	ErrEmptyRange = errors.New("no answers in requested range")
	// ErrBadRange indicates the range end precedes its start.
	ErrBadRange = errors.New("invalid report range")
)
