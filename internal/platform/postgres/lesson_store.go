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

// PostgresLessonStore implements the store.LessonStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLessonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLessonStore creates a new PostgreSQL implementation of the LessonStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresLessonStore(db store.DBTX, logger *slog.Logger) *PostgresLessonStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLessonStore{
		db:     db,
		logger: logger.With(slog.String("component", "lesson_store")),
	}
}

// Ensure PostgresLessonStore implements store.LessonStore interface
var _ store.LessonStore = (*PostgresLessonStore)(nil)

const lessonColumns = `id, user_id, title, content, source_url, source_kind, subject,
	category, exam_focus, difficulty, status, created_at, updated_at`

// Create implements store.LessonStore.Create.
// Returns validation errors from the domain Lesson if data is invalid.
func (s *PostgresLessonStore) Create(ctx context.Context, lesson *domain.Lesson) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lesson.Validate(); err != nil {
		log.Warn("lesson validation failed during create",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lesson.ID.String()))
		return err
	}

	query := `
		INSERT INTO lessons (` + lessonColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		lesson.ID,
		lesson.UserID,
		lesson.Title,
		lesson.Content,
		lesson.SourceURL,
		lesson.SourceKind,
		lesson.Subject,
		lesson.Category,
		lesson.ExamFocus,
		lesson.Difficulty,
		lesson.Status,
		lesson.CreatedAt,
		lesson.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lesson.ID.String()))
		return MapError(err)
	}

	log.Info("lesson created successfully",
		slog.String("lesson_id", lesson.ID.String()),
		slog.String("user_id", lesson.UserID.String()),
		slog.String("category", string(lesson.Category)))
	return nil
}

// GetByID implements store.LessonStore.GetByID.
// Returns store.ErrLessonNotFound if the lesson does not exist.
func (s *PostgresLessonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("lesson not found", slog.String("lesson_id", id.String()))
			return nil, store.ErrLessonNotFound
		}
		log.Error("failed to get lesson by ID",
			slog.String("error", err.Error()),
			slog.String("lesson_id", id.String()))
		return nil, MapError(err)
	}

	return lesson, nil
}

// ListByUser implements store.LessonStore.ListByUser.
func (s *PostgresLessonStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list lessons",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	lessons := make([]*domain.Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			log.Error("failed to scan lesson row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("lessons listed",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(lessons)))
	return lessons, nil
}

// UpdateStatus implements store.LessonStore.UpdateStatus.
// Returns store.ErrLessonNotFound if the lesson does not exist.
func (s *PostgresLessonStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.LessonStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch status {
	case domain.LessonStatusActive, domain.LessonStatusCompleted, domain.LessonStatusArchived:
	default:
		return domain.NewValidationError("status", "is not a known status", domain.ErrInvalidLessonStatus)
	}

	query := `UPDATE lessons SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update lesson status",
			slog.String("error", err.Error()),
			slog.String("lesson_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "lesson"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.ErrLessonNotFound
		}
		return err
	}

	log.Info("lesson status updated",
		slog.String("lesson_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.LessonStore.WithTx.
func (s *PostgresLessonStore) WithTx(tx *sql.Tx) store.LessonStore {
	return &PostgresLessonStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (*domain.Lesson, error) {
	var l domain.Lesson
	var sourceKind, category, examFocus, difficulty, status string
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.Title,
		&l.Content,
		&l.SourceURL,
		&sourceKind,
		&l.Subject,
		&category,
		&examFocus,
		&difficulty,
		&status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.SourceKind = domain.SourceKind(sourceKind)
	l.Category = domain.Category(category)
	l.ExamFocus = domain.ExamFocus(examFocus)
	l.Difficulty = domain.Difficulty(difficulty)
	l.Status = domain.LessonStatus(status)
	return &l, nil
}
