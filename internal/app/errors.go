package service

import "errors"

var (
	// ErrDuplicateAnswer indicates the answer event was already ingested.
	ErrDuplicateAnswer = errors.New("answer already recorded")
	// ErrInvalidAnswer indicates the answer event failed validation.
	ErrInvalidAnswer = errors.New("invalid answer event")
	// ErrUnknownBackend indicates an unsupported storage backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)
