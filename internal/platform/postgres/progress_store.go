package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Create implements store.ProgressStore.Create.
// Returns store.ErrInvalidEntity if the lesson doesn't exist (foreign key violation).
func (s *PostgresProgressStore) Create(ctx context.Context, record *domain.ProgressRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("lesson_id", record.LessonID.String()))
		return err
	}

	query := `
		INSERT INTO progress_records
			(id, user_id, lesson_id, room_type, score, max_score, time_spent_seconds, completed, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.LessonID,
		record.Room,
		record.Score,
		record.MaxScore,
		record.TimeSpentSeconds,
		record.Completed,
		record.RecordedAt,
	)
	if err != nil {
		log.Error("failed to create progress record",
			slog.String("error", err.Error()),
			slog.String("lesson_id", record.LessonID.String()),
			slog.String("room", string(record.Room)))
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %w", store.ErrLessonNotFound, MapError(err))
		}
		return MapError(err)
	}

	log.Info("progress recorded",
		slog.String("lesson_id", record.LessonID.String()),
		slog.String("room", string(record.Room)),
		slog.Bool("completed", record.Completed))
	return nil
}

// ListByLesson implements store.ProgressStore.ListByLesson.
func (s *PostgresProgressStore) ListByLesson(
	ctx context.Context,
	userID, lessonID uuid.UUID,
) ([]*domain.ProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, lesson_id, room_type, score, max_score, time_spent_seconds, completed, recorded_at
		FROM progress_records
		WHERE user_id = $1 AND lesson_id = $2
		ORDER BY recorded_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, lessonID)
	if err != nil {
		log.Error("failed to list progress",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*domain.ProgressRecord, 0)
	for rows.Next() {
		var p domain.ProgressRecord
		var room string
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.LessonID,
			&room,
			&p.Score,
			&p.MaxScore,
			&p.TimeSpentSeconds,
			&p.Completed,
			&p.RecordedAt,
		); err != nil {
			return nil, MapError(err)
		}
		p.Room = domain.RoomType(room)
		records = append(records, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// WithTx implements store.ProgressStore.WithTx.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}
