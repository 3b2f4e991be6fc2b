// Package apperr defines the error kinds shared across the store surface.
// Callers match them with errors.Is after the repositories wrap them with
// context.
package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidReorder      = errors.New("invalid reorder")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrPersistence         = errors.New("persistence failure")
)
