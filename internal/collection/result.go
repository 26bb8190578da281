package collection

import (
	"errors"
	"fmt"

	"github.com/roach88/glimpse/internal/ir"
)

// ErrorCode categorizes why a derived source has no value.
type ErrorCode string

const (
	// CodeNotComputed means no derivation pass has produced a value yet.
	CodeNotComputed ErrorCode = "gl-error-not-computed"

	// CodeCircular means the source is part of a dependency cycle.
	CodeCircular ErrorCode = "gl-error-circular-dependency"

	// CodeFailed means the derive function returned an error or panicked.
	CodeFailed ErrorCode = "gl-error-derivation-failed"
)

// DerivationError is the error half of a Result. It is carried as data,
// never raised: one bad source must not stop the rest of a pass.
type DerivationError struct {
	Code  ErrorCode
	ID    string
	Cause error // set for CodeFailed
}

// Sentinels for errors.Is. They match any DerivationError with the same code.
var (
	ErrNotComputed = &DerivationError{Code: CodeNotComputed}
	ErrCircular    = &DerivationError{Code: CodeCircular}
	ErrFailed      = &DerivationError{Code: CodeFailed}
)

func (e *DerivationError) Error() string {
	msg := string(e.Code)
	if e.ID != "" {
		msg = fmt.Sprintf("%s (source=%s)", msg, e.ID)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *DerivationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DerivationError sentinel with the same code.
func (e *DerivationError) Is(target error) bool {
	t, ok := target.(*DerivationError)
	if !ok {
		return false
	}
	return t.ID == "" && t.Cause == nil && t.Code == e.Code
}

// IsCircular reports whether err is a cycle DerivationError.
// Uses errors.As to handle wrapped errors.
func IsCircular(err error) bool {
	var de *DerivationError
	if errors.As(err, &de) {
		return de.Code == CodeCircular
	}
	return false
}

// IsNotComputed reports whether err is a not-yet-computed DerivationError.
func IsNotComputed(err error) bool {
	var de *DerivationError
	if errors.As(err, &de) {
		return de.Code == CodeNotComputed
	}
	return false
}

// Result is the resolved value of a source: either a Value or an Err.
type Result struct {
	Value ir.IRValue
	Err   *DerivationError
}

// OK reports whether the result carries a value.
func (r Result) OK() bool {
	return r.Err == nil
}

// Error returns Err as an error, or nil. It avoids the typed-nil trap of
// assigning r.Err to an error variable directly.
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

func (r Result) clone() Result {
	out := Result{Value: ir.Clone(r.Value)}
	if r.Err != nil {
		e := *r.Err
		out.Err = &e
	}
	return out
}
