package service

import "errors"

var (
	// ErrWriteFailure marks a failed upsert batch. The batch is skipped, the run continues.
	ErrWriteFailure = errors.New("write failure")
	// ErrCountMismatch marks a period whose stored count differs from the upstream count.
	ErrCountMismatch = errors.New("count mismatch")
	// ErrStoreUnavailable is the only fatal condition: the store cannot be reached at startup.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrBusy is returned when a pipeline job is already running.
	ErrBusy = errors.New("pipeline job already running")
)
