// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidRoomType is returned for room identifiers outside the known set.
	ErrInvalidRoomType = errors.New("invalid room type")

	// ErrInvalidLessonStatus is returned when a lesson status is not valid.
	ErrInvalidLessonStatus = errors.New("invalid lesson status")

	// ErrInvalidTabContent is returned when a tab payload does not match its tab type.
	ErrInvalidTabContent = errors.New("invalid tab content")

	// ErrInvalidQuestion is returned for quiz or test questions with an inconsistent shape.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrInvalidBackendMode is returned for unknown backend modes.
	ErrInvalidBackendMode = errors.New("invalid backend mode")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a single invalid field. It matches ErrValidation
// with errors.Is in addition to whatever cause it wraps.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
