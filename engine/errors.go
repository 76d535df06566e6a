package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by engine operations. Callers match them with
// errors.Is; nothing in this package panics on a caller mistake.
var (
	// ErrNotFound means the referenced task or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition means the requested status change is not in the
	// lifecycle table, or an actor guard (assignee identity, separation of
	// duties) did not hold.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrAlreadyClaimed means a claim hit a task whose assignee is already set.
	ErrAlreadyClaimed = errors.New("task already claimed")
	// ErrConflict means the optimistic guard failed: another caller moved the
	// task first. Safe to retry after re-reading the task.
	ErrConflict = errors.New("concurrent update conflict")
)

// ValidationError reports malformed input rejected before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps an underlying storage failure. It is the only
// retryable error class; the coordinator guarantees no partial writes
// escape when one occurs.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient storage failure.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// storeErr wraps unexpected storage errors, passing engine errors through.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAlreadyClaimed) || errors.Is(err, ErrConflict) {
		return err
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
