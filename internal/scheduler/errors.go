package scheduler

import "errors"

var (
	// ErrScheduleFailed indicates the interval job could not be registered.
	ErrScheduleFailed = errors.New("failed to schedule aggregation trigger")
	// ErrScanFailed indicates a cycle could not scan the answer log.
	ErrScanFailed = errors.New("aggregation cycle scan failed")
)
