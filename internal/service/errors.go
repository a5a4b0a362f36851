package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studyrooms-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrNotOwned indicates a lesson is owned by a different user than the one making the request.
	// An ownership mismatch is never reported as not-found.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrLessonNotFound indicates that the lesson does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrLessonArchived indicates progress was recorded against an archived lesson.
	// API layer should map this to HTTP 409 Conflict.
	ErrLessonArchived = errors.New("lesson is archived")
)

// LessonServiceError wraps errors from the lesson services with context.
type LessonServiceError struct {
	// Operation is the operation that failed (e.g., "create_lesson", "get_room_content")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for LessonServiceError.
func (e *LessonServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lesson service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("lesson service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *LessonServiceError) Unwrap() error {
	return e.Err
}

// NewLessonServiceError creates a new LessonServiceError.
// Sentinel errors that callers branch on are returned directly without wrapping,
// and store-level not-found errors are mapped to their service equivalents.
func NewLessonServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotOwned):
		return ErrNotOwned
	case errors.Is(err, ErrLessonNotFound), errors.Is(err, store.ErrLessonNotFound):
		return ErrLessonNotFound
	case errors.Is(err, ErrLessonArchived):
		return ErrLessonArchived
	}

	return &LessonServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
