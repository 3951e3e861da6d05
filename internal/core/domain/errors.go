package domain

import "errors"

// Validation errors shared by the store boundary hooks and the services.
// Operation-specific failures live as sentinels next to the service that
// produces them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidRole  = errors.New("invalid role")
)
