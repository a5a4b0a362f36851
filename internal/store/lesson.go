package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// LessonStore defines the interface for lesson persistence.
type LessonStore interface {
	// Create saves a new lesson.
	// Returns validation errors from the domain Lesson if data is invalid.
	Create(ctx context.Context, lesson *domain.Lesson) error

	// GetByID retrieves a lesson by its unique ID.
	// Returns ErrLessonNotFound if the lesson does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error)

	// ListByUser returns the lessons owned by userID, newest first.
	// Returns an empty slice if the user has no lessons.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Lesson, error)

	// UpdateStatus changes the lifecycle status of a lesson.
	// Returns ErrLessonNotFound if the lesson does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LessonStatus) error

	// WithTx returns a new LessonStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) LessonStore
}
