package collection

import "errors"

var (
	// ErrNotAppendable is returned by Append when the target payload is
	// not an array.
	ErrNotAppendable = errors.New("source payload is not appendable")

	// ErrKindMismatch is returned by Extend when a patch carries fields
	// of the other source kind.
	ErrKindMismatch = errors.New("patch does not match source kind")

	// ErrEmptyID is returned by Extend for a patch without an id.
	ErrEmptyID = errors.New("source id is empty")
)
