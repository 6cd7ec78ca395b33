package services

import "errors"

var (
	// ErrNotFound is returned when an operation targets an id that does not
	// exist. Handlers map it to a 404.
	ErrNotFound = errors.New("sighting not found")

	// ErrValidation wraps user-input problems. Handlers map it to a 400.
	ErrValidation = errors.New("validation failed")
)
