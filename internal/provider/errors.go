package provider

import "errors"

var (
	// ErrInvalidInput is returned for malformed key material or arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrFailure is returned when a backend cryptographic operation
	// rejected its input or failed internally.
	ErrFailure = errors.New("provider failure")
)
