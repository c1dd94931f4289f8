package config

import "errors"

// Errors returned by configuration operations.
var (
	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidValue indicates a value of the right type that is out of range
	// or not one of the accepted names.
	ErrInvalidValue = errors.New("invalid value")
)
