package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no workflow exists for the requested borehole.
	ErrNotFound = errors.New("workflow not found")
	// ErrAlreadyExists indicates the borehole already has a workflow.
	ErrAlreadyExists = errors.New("workflow already exists for borehole")
	// ErrConcurrencyConflict indicates another transition committed first.
	// Safe to retry after re-reading current state.
	ErrConcurrencyConflict = errors.New("concurrent workflow modification")
)

// InvalidTransitionError reports a trigger that is not legal from the
// workflow's current status, so callers can explain why.
type InvalidTransitionError struct {
	From    Status
	Trigger Trigger
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("trigger %q is not allowed from status %q", e.Trigger, e.From)
}

// ValidationError reports caller input that must be corrected before retrying.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
