package document

import "errors"

// Errors returned by document operations.
var (
	// ErrInvalidRange indicates a position or selection that does not resolve
	// to a live location in the document.
	ErrInvalidRange = errors.New("invalid range")

	// ErrOffsetOutOfRange indicates an absolute offset outside [0, Len()].
	ErrOffsetOutOfRange = errors.New("offset out of range")
)
