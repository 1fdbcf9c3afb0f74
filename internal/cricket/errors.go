package cricket

import (
	"errors"
	"fmt"
)

// The three expected failure kinds of scoring operations. Callers branch on
// them: validation means the input is wrong, a state conflict means the
// operation is not allowed right now, not found is a lookup failure.
// Anything else is an infrastructure error.

// ValidationError reports malformed or logically invalid input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalidf builds a ValidationError.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflict reports an operation that is not valid in the current
// lifecycle state.
type StateConflict struct {
	Msg string
}

func (e *StateConflict) Error() string { return e.Msg }

// Conflictf builds a StateConflict.
func Conflictf(format string, args ...any) error {
	return &StateConflict{Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing match, innings, over or ball.
type NotFound struct {
	Msg string
}

func (e *NotFound) Error() string { return e.Msg }

// NotFoundf builds a NotFound.
func NotFoundf(format string, args ...any) error {
	return &NotFound{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a StateConflict.
func IsConflict(err error) bool {
	var sc *StateConflict
	return errors.As(err, &sc)
}

// IsNotFound reports whether err is a NotFound.
func IsNotFound(err error) bool {
	var nf *NotFound
	return errors.As(err, &nf)
}
