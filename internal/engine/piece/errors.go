package piece

import "errors"

// Errors returned by piece table operations.
var (
	// ErrOutOfBounds indicates a position outside [0, Len].
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrInvalidRange indicates a range whose end lies before its start or
	// past the end of the document.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidEncoding indicates text that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid utf-8 text")

	// ErrCorrupt indicates a broken internal invariant.
	ErrCorrupt = errors.New("piece table corrupt")
)
