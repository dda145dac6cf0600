package calendar

import "errors"

// Sentinel kinds for calendar errors.
var (
	ErrLoad    = errors.New("calendar load failed")
	ErrBadDate = errors.New("invalid calendar date")
)
