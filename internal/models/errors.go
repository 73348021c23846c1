package models

import "errors"

var (
	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation error")
	// ErrInvariant marks an operation that would break the folder tree or
	// membership consistency.
	ErrInvariant = errors.New("invariant violation")
	// ErrStorage marks a persistence backend failure.
	ErrStorage = errors.New("storage error")
	// ErrNotFound marks a stale or unknown identifier.
	ErrNotFound = errors.New("not found")
)
