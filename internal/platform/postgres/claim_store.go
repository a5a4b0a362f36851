package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/store"
)

// PostgresClaimStore implements the store.ClaimStore interface on the
// room_generation_claims table. The (lesson_id, room_type) primary key
// is what serializes concurrent claim attempts.
type PostgresClaimStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresClaimStore creates a new PostgreSQL implementation of the ClaimStore interface.
func NewPostgresClaimStore(db store.DBTX, logger *slog.Logger) *PostgresClaimStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresClaimStore{
		db:     db,
		logger: logger.With(slog.String("component", "claim_store")),
	}
}

// Ensure PostgresClaimStore implements store.ClaimStore interface
var _ store.ClaimStore = (*PostgresClaimStore)(nil)

// TryClaim implements store.ClaimStore.TryClaim.
func (s *PostgresClaimStore) TryClaim(
	ctx context.Context,
	lessonID uuid.UUID,
	room domain.RoomType,
	staleAfter time.Duration,
) (time.Time, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// timestamptz keeps microseconds; the token must survive a round trip.
	now := time.Now().UTC().Truncate(time.Microsecond)
	cutoff := now.Add(-staleAfter)

	query := `
		INSERT INTO room_generation_claims (lesson_id, room_type, status, claimed_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (lesson_id, room_type) DO UPDATE
			SET claimed_at = EXCLUDED.claimed_at, updated_at = EXCLUDED.updated_at
			WHERE room_generation_claims.status = $3
				AND room_generation_claims.claimed_at < $5
		RETURNING claimed_at
	`

	var claimedAt time.Time
	err := s.db.QueryRowContext(ctx, query, lessonID, room, domain.ClaimGenerating, now, cutoff).
		Scan(&claimedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("room already claimed",
				slog.String("lesson_id", lessonID.String()),
				slog.String("room", string(room)))
			return time.Time{}, false, nil
		}
		log.Error("failed to claim room",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()),
			slog.String("room", string(room)))
		return time.Time{}, false, MapError(err)
	}

	log.Debug("room claimed for generation",
		slog.String("lesson_id", lessonID.String()),
		slog.String("room", string(room)))
	return claimedAt.UTC(), true, nil
}

// MarkGenerated implements store.ClaimStore.MarkGenerated.
func (s *PostgresClaimStore) MarkGenerated(
	ctx context.Context,
	lessonID uuid.UUID,
	room domain.RoomType,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	query := `
		INSERT INTO room_generation_claims (lesson_id, room_type, status, claimed_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (lesson_id, room_type) DO UPDATE
			SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, lessonID, room, domain.ClaimGenerated, now); err != nil {
		log.Error("failed to mark room generated",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()),
			slog.String("room", string(room)))
		return MapError(err)
	}
	return nil
}

// Release implements store.ClaimStore.Release.
func (s *PostgresClaimStore) Release(
	ctx context.Context,
	lessonID uuid.UUID,
	room domain.RoomType,
	claimedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM room_generation_claims
		WHERE lesson_id = $1 AND room_type = $2 AND status = $3 AND claimed_at = $4
	`
	result, err := s.db.ExecContext(ctx, query, lessonID, room, domain.ClaimGenerating, claimedAt.UTC())
	if err != nil {
		log.Error("failed to release room claim",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()),
			slog.String("room", string(room)))
		return MapError(err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		log.Debug("room claim no longer held, nothing released",
			slog.String("lesson_id", lessonID.String()),
			slog.String("room", string(room)))
		return nil
	}
	log.Debug("room claim released",
		slog.String("lesson_id", lessonID.String()),
		slog.String("room", string(room)))
	return nil
}

// Get implements store.ClaimStore.Get.
// Returns store.ErrClaimNotFound if the room was never claimed.
func (s *PostgresClaimStore) Get(
	ctx context.Context,
	lessonID uuid.UUID,
	room domain.RoomType,
) (*domain.GenerationClaim, error) {
	query := `
		SELECT lesson_id, room_type, status, claimed_at, updated_at
		FROM room_generation_claims
		WHERE lesson_id = $1 AND room_type = $2
	`

	var c domain.GenerationClaim
	var roomType, status string
	err := s.db.QueryRowContext(ctx, query, lessonID, room).
		Scan(&c.LessonID, &roomType, &status, &c.ClaimedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrClaimNotFound
		}
		return nil, MapError(err)
	}
	c.Room = domain.RoomType(roomType)
	c.Status = domain.ClaimStatus(status)
	return &c, nil
}

// WithTx implements store.ClaimStore.WithTx.
func (s *PostgresClaimStore) WithTx(tx *sql.Tx) store.ClaimStore {
	return &PostgresClaimStore{
		db:     tx,
		logger: s.logger,
	}
}
