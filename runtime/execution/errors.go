package execution

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

var (
	// ErrNoInitialFunction is returned when a work without initial function is invoked
	ErrNoInitialFunction = errors.New("floor: no initial function")

	// ErrProcessCancelled is delivered to work dropped by a cancelled process
	ErrProcessCancelled = errors.New("floor: process cancelled")

	// ErrFloorClosed is returned when invoking a closed floor
	ErrFloorClosed = errors.New("floor: closed")

	// ErrUnknownFunction is returned when a function is not part of the office
	ErrUnknownFunction = errors.New("floor: unknown function")
)

// SourcingError represents a failure to produce a managed object
type SourcingError struct {
	Object string
	Cause  error
}

func (e *SourcingError) Error() string {
	return fmt.Sprintf("failed to source %v: %v", e.Object, e.Cause)
}

func (e *SourcingError) Unwrap() error { return e.Cause }

// ExecutionError represents a failure returned (or panicked) by a function body
type ExecutionError struct {
	Function string
	Cause    error
	Panic    bool
}

func (e *ExecutionError) Error() string {
	if e.Panic {
		return fmt.Sprintf("function %v panicked: %v", e.Function, e.Cause)
	}
	return fmt.Sprintf("function %v failed: %v", e.Function, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// TimeoutError represents an asynchronous operation exceeding its bound
type TimeoutError struct {
	Object  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("asynchronous operation of %v timed out after %v", e.Object, e.Timeout)
}

// OverloadError represents a team rejecting a job
type OverloadError struct {
	Team     string
	Function string
	Cause    error
}

func (e *OverloadError) Error() string {
	return fmt.Sprintf("team %v rejected function %v: %v", e.Team, e.Function, e.Cause)
}

func (e *OverloadError) Unwrap() error { return e.Cause }

// CleanupEscalation records a failure of a cleanup job
type CleanupEscalation struct {
	Object string
	Type   reflect.Type
	Err    error
}

func (e *CleanupEscalation) Error() string {
	return fmt.Sprintf("failed to clean up %v (%v): %v", e.Object, e.Type, e.Err)
}

func (e *CleanupEscalation) Unwrap() error { return e.Err }

// ThreadFailure records an unhandled escalation of a spawned thread
type ThreadFailure struct {
	ThreadID string
	Err      error
}
