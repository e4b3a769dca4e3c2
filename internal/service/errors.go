package service

import "fmt"

// EmptySourceError means the queue or rotation group had nothing that
// could be scheduled.  Generate turns it into a zero-entry result; it is
// exported so callers of lower-level helpers can recognise it.
type EmptySourceError struct {
	SourceType string
	SourceID   uint64
}

func (e *EmptySourceError) Error() string {
	return fmt.Sprintf("%s %d has no schedulable content", e.SourceType, e.SourceID)
}

// ConflictResolutionError wraps a failure of the transactional
// read-delete-insert cycle.  Nothing was committed.  Retryable is set when
// the failure came from lock contention with a concurrent run, in which
// case re-invoking generation is expected to succeed.
type ConflictResolutionError struct {
	Phase     Phase
	Retryable bool
	Err       error
}

func (e *ConflictResolutionError) Error() string {
	return fmt.Sprintf("schedule %s failed: %v", e.Phase, e.Err)
}

func (e *ConflictResolutionError) Unwrap() error { return e.Err }
