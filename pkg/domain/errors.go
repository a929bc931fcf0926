package domain

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned when a loop ends because its controller went inactive with no result.
var ErrInterrupted = errors.New("interrupted")

// ErrTimeout is returned when the time limit of an abortable region elapsed.
var ErrTimeout = errors.New("time limit elapsed")

// ErrAborted is returned when a forced stop triggered the armed abort region.
var ErrAborted = errors.New("aborted")

// ErrRegistrationTaken is returned when an abort region is requested twice on the same controller.
var ErrRegistrationTaken = errors.New("abort registration already taken")

// ErrMailboxClosed is returned when a message is sent to a unit that no longer accepts messages.
var ErrMailboxClosed = errors.New("mailbox closed")

// FailedError wraps a domain error that ended a unit or a routine.
type FailedError struct {
	Cause error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("failed: %v", e.Cause)
}

func (e *FailedError) Unwrap() error {
	return e.Cause
}

// Failed wraps cause into a FailedError. Errors that already belong to the
// taxonomy (interrupted, timeout, aborted, registration) are returned unchanged.
func Failed(cause error) error {
	if cause == nil {
		return nil
	}
	if IsTerminal(cause) {
		return cause
	}
	var failed *FailedError
	if errors.As(cause, &failed) {
		return cause
	}
	return &FailedError{Cause: cause}
}

// IsTerminal reports whether err is one of the runtime's own outcome errors.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrInterrupted) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrAborted) ||
		errors.Is(err, ErrRegistrationTaken)
}
