package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	// ErrInsufficientData signals an empty event window. Non-fatal: the
	// caller keeps the prior profile and skips the cycle.
	ErrInsufficientData = errors.New("no new answer events since last update")
)
