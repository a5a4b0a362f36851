package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/store"
)

// batchTables maps each batched room to the table holding its items.
var batchTables = map[domain.RoomType]string{
	domain.RoomQuiz:   "quiz_questions",
	domain.RoomMemory: "flashcards",
	domain.RoomTest:   "test_questions",
}

// PostgresArtifactStore implements the store.ArtifactStore interface
// using a PostgreSQL database as the storage backend.
type PostgresArtifactStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresArtifactStore creates a new PostgreSQL implementation of the ArtifactStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresArtifactStore(db store.DBTX, logger *slog.Logger) *PostgresArtifactStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresArtifactStore{
		db:     db,
		logger: logger.With(slog.String("component", "artifact_store")),
	}
}

// Ensure PostgresArtifactStore implements store.ArtifactStore interface
var _ store.ArtifactStore = (*PostgresArtifactStore)(nil)

// SaveRoom implements store.ArtifactStore.SaveRoom.
// The overview is inserted only if absent; other rooms append a new batch.
// Callers composing several rows should pass a transaction through WithTx.
func (s *PostgresArtifactStore) SaveRoom(
	ctx context.Context,
	lessonID uuid.UUID,
	content *domain.RoomContent,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if content == nil {
		return fmt.Errorf("%w: room content is nil", store.ErrInvalidEntity)
	}
	if err := content.Validate(); err != nil {
		log.Warn("room content validation failed during save",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()),
			slog.String("room", string(content.Room)))
		return err
	}

	if content.Room == domain.RoomClarity {
		return s.saveOverview(ctx, log, lessonID, content.Overview)
	}

	items, err := batchItems(content)
	if err != nil {
		return err
	}

	table := batchTables[content.Room]
	batchID := uuid.New()
	now := time.Now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, lesson_id, batch_id, position, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table)

	for i, item := range items {
		if _, err := s.db.ExecContext(ctx, query, uuid.New(), lessonID, batchID, i, item, now); err != nil {
			log.Error("failed to insert room item",
				slog.String("error", err.Error()),
				slog.String("lesson_id", lessonID.String()),
				slog.String("room", string(content.Room)),
				slog.Int("position", i))
			return MapError(err)
		}
	}

	log.Info("room batch saved",
		slog.String("lesson_id", lessonID.String()),
		slog.String("room", string(content.Room)),
		slog.String("batch_id", batchID.String()),
		slog.Int("items", len(items)))
	return nil
}

func (s *PostgresArtifactStore) saveOverview(
	ctx context.Context,
	log *slog.Logger,
	lessonID uuid.UUID,
	overview *domain.OverviewContent,
) error {
	payload, err := json.Marshal(overview)
	if err != nil {
		return fmt.Errorf("failed to encode overview: %w", err)
	}

	query := `
		INSERT INTO overviews (lesson_id, content, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (lesson_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, lessonID, payload, time.Now().UTC())
	if err != nil {
		log.Error("failed to insert overview",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "overview"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("overview already exists, keeping stored version",
				slog.String("lesson_id", lessonID.String()))
			return fmt.Errorf("%w: overview for lesson %s", store.ErrDuplicate, lessonID)
		}
		return err
	}

	log.Info("overview saved", slog.String("lesson_id", lessonID.String()))
	return nil
}

// GetRoom implements store.ArtifactStore.GetRoom.
// Returns store.ErrArtifactNotFound if the room has no stored content.
func (s *PostgresArtifactStore) GetRoom(
	ctx context.Context,
	lessonID uuid.UUID,
	room domain.RoomType,
) (*domain.RoomContent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if room == domain.RoomClarity {
		var payload []byte
		err := s.db.QueryRowContext(ctx,
			`SELECT content FROM overviews WHERE lesson_id = $1`, lessonID).Scan(&payload)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, store.ErrArtifactNotFound
			}
			log.Error("failed to read overview",
				slog.String("error", err.Error()),
				slog.String("lesson_id", lessonID.String()))
			return nil, MapError(err)
		}

		var overview domain.OverviewContent
		if err := json.Unmarshal(payload, &overview); err != nil {
			return nil, fmt.Errorf("failed to decode stored overview: %w", err)
		}
		return &domain.RoomContent{Room: room, Overview: &overview}, nil
	}

	table, ok := batchTables[room]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, room)
	}

	// Latest batch wins when more than one generation ever completed.
	query := fmt.Sprintf(`
		SELECT payload FROM %[1]s
		WHERE lesson_id = $1 AND batch_id = (
			SELECT batch_id FROM %[1]s
			WHERE lesson_id = $1
			ORDER BY created_at DESC, batch_id DESC
			LIMIT 1
		)
		ORDER BY position ASC
	`, table)

	rows, err := s.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		log.Error("failed to read room batch",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()),
			slog.String("room", string(room)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var items []json.RawMessage
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, MapError(err)
		}
		items = append(items, json.RawMessage(payload))
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	if len(items) == 0 {
		return nil, store.ErrArtifactNotFound
	}

	return decodeBatch(room, items)
}

// WithTx implements store.ArtifactStore.WithTx.
func (s *PostgresArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore {
	return &PostgresArtifactStore{
		db:     tx,
		logger: s.logger,
	}
}

func batchItems(content *domain.RoomContent) ([][]byte, error) {
	var items []any
	switch content.Room {
	case domain.RoomQuiz:
		for _, q := range content.Questions {
			items = append(items, q)
		}
	case domain.RoomMemory:
		for _, f := range content.Flashcards {
			items = append(items, f)
		}
	case domain.RoomTest:
		for _, q := range content.Test {
			items = append(items, q)
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, content.Room)
	}

	out := make([][]byte, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s item: %w", content.Room, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

func decodeBatch(room domain.RoomType, items []json.RawMessage) (*domain.RoomContent, error) {
	content := &domain.RoomContent{Room: room}
	for _, raw := range items {
		var err error
		switch room {
		case domain.RoomQuiz:
			var q domain.QuizQuestion
			err = json.Unmarshal(raw, &q)
			content.Questions = append(content.Questions, q)
		case domain.RoomMemory:
			var f domain.Flashcard
			err = json.Unmarshal(raw, &f)
			content.Flashcards = append(content.Flashcards, f)
		case domain.RoomTest:
			var q domain.TestQuestion
			err = json.Unmarshal(raw, &q)
			content.Test = append(content.Test, q)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode stored %s item: %w", room, err)
		}
	}
	return content, nil
}
