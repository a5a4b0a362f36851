package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// ProgressStore persists the attempts learners record against rooms.
type ProgressStore interface {
	// Create saves a progress record.
	// Returns store.ErrInvalidEntity if the lesson does not exist.
	Create(ctx context.Context, record *domain.ProgressRecord) error

	// ListByLesson returns userID's records for lessonID, oldest first.
	ListByLesson(ctx context.Context, userID, lessonID uuid.UUID) ([]*domain.ProgressRecord, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
