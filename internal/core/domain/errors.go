package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Lifecycle errors
var (
	// ErrInvalidTransition is returned when an operation is not legal from
	// the row's current status. Always recoverable; surfaced to the caller
	// as a rejected action.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateContract is returned when a contract already exists for an
	// application. Indicates a caller bug or a lost race; logged as an error.
	ErrDuplicateContract = errors.New("contract already exists for application")

	// ErrAccountSuspended is a business-rule refusal, not a system fault.
	ErrAccountSuspended = errors.New("pharmacy account is suspended")

	// ErrDuplicateApplication enforces at most one open application per
	// (posting, pharmacist) pair.
	ErrDuplicateApplication = errors.New("open application already exists")
)

// TransientError wraps an infrastructure failure (lost connection, lock
// timeout) that did not mutate any state and may succeed on retry. The
// scheduler retries these rows on its next tick; handlers answer with a
// generic retry-later message.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure in %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientError for the given operation.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is a retryable infrastructure failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsBusinessError reports whether err is an expected, typed business outcome
// rather than a system fault.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrDuplicateContract) ||
		errors.Is(err, ErrAccountSuspended) ||
		errors.Is(err, ErrDuplicateApplication) ||
		errors.Is(err, ErrInvalidInput)
}
