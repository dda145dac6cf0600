package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("student profile not found")
	ErrDuplicateEvent = errors.New("answer event already logged")
	ErrBackend        = errors.New("store backend failure")
)
