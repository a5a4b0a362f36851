package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// ArtifactStore persists the generated content of lesson rooms.
//
// Overviews are insert-if-absent: once stored, an overview is never
// replaced. Quiz questions, flashcards and test questions are stored as
// append-only batches and reads return the most recent batch.
type ArtifactStore interface {
	// SaveRoom stores generated content for one room of a lesson.
	// Returns ErrDuplicate if an overview already exists for the lesson.
	SaveRoom(ctx context.Context, lessonID uuid.UUID, content *domain.RoomContent) error

	// GetRoom returns the generated content of room.
	// Returns ErrArtifactNotFound if nothing has been generated yet.
	GetRoom(ctx context.Context, lessonID uuid.UUID, room domain.RoomType) (*domain.RoomContent, error)

	// WithTx returns a new ArtifactStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ArtifactStore
}
