package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// ClaimStore guards room generation so that at most one generation per
// (lesson, room) is in flight.
type ClaimStore interface {
	// TryClaim takes the generation claim for a room. It returns true when
	// the caller now owns generation, together with the claim's claimed_at,
	// which identifies this claim to Release. A claim still generating after
	// staleAfter may be taken over; a generated claim is never taken.
	TryClaim(
		ctx context.Context,
		lessonID uuid.UUID,
		room domain.RoomType,
		staleAfter time.Duration,
	) (claimedAt time.Time, ok bool, err error)

	// MarkGenerated records that the room's content has been stored. It
	// creates the claim if none exists.
	MarkGenerated(ctx context.Context, lessonID uuid.UUID, room domain.RoomType) error

	// Release drops the claim taken at claimedAt if it is still generating,
	// so a later read can trigger generation again. A claim that was taken
	// over since, or already generated, is left alone.
	Release(ctx context.Context, lessonID uuid.UUID, room domain.RoomType, claimedAt time.Time) error

	// Get returns the claim for a room.
	// Returns ErrClaimNotFound if the room was never claimed.
	Get(ctx context.Context, lessonID uuid.UUID, room domain.RoomType) (*domain.GenerationClaim, error)

	// WithTx returns a new ClaimStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ClaimStore
}
