package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a failure of the pass machinery itself.
//
// Source-level problems (cycles, failing transforms) are never runtime
// errors: they are contained in the collection's results. RuntimeError
// covers what surrounds a pass: cancellation, digests, and the pass log.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// PassID identifies the affected pass, if one was assigned.
	PassID string

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeCancelled means the context ended before the pass started.
	ErrCodeCancelled RuntimeErrorCode = "CANCELLED"

	// ErrCodeDigest means the pass results could not be digested.
	ErrCodeDigest RuntimeErrorCode = "DIGEST_FAILED"

	// ErrCodeLogWrite means the pass ran but could not be logged.
	ErrCodeLogWrite RuntimeErrorCode = "LOG_WRITE_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.PassID != "" {
		msg = fmt.Sprintf("%s (pass=%s)", msg, e.PassID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsLogWriteError reports whether err wraps a pass log write failure.
func IsLogWriteError(err error) bool {
	return hasCode(err, ErrCodeLogWrite)
}

// IsCancelled reports whether err wraps a cancelled pass.
func IsCancelled(err error) bool {
	return hasCode(err, ErrCodeCancelled)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == code
}
