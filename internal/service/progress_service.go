package service

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

// ProgressInput is one attempt at a room.
type ProgressInput struct {
	Room             domain.RoomType
	Score            int
	MaxScore         int
	TimeSpentSeconds int
	Completed        bool
}

// ProgressService records learner attempts.
type ProgressService interface {
	// RecordProgress stores an attempt. Completing the test room completes
	// an active lesson.
	RecordProgress(ctx context.Context, userID, lessonID uuid.UUID, in ProgressInput) (*domain.ProgressRecord, error)
}

type progressServiceImpl struct {
	db       *sql.DB
	lessons  store.LessonStore
	progress store.ProgressStore
	logger   *slog.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	db *sql.DB,
	lessons store.LessonStore,
	progress store.ProgressStore,
	logger *slog.Logger,
) (ProgressService, error) {
	switch {
	case db == nil:
		return nil, missingDependency("db")
	case lessons == nil:
		return nil, missingDependency("lessons")
	case progress == nil:
		return nil, missingDependency("progress")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &progressServiceImpl{
		db:       db,
		lessons:  lessons,
		progress: progress,
		logger:   logger.With("component", "progress_service"),
	}, nil
}

// RecordProgress implements ProgressService.
func (s *progressServiceImpl) RecordProgress(
	ctx context.Context,
	userID, lessonID uuid.UUID,
	in ProgressInput,
) (*domain.ProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	lesson, err := ownedLesson(ctx, s.lessons, userID, lessonID)
	if err != nil {
		return nil, NewLessonServiceError("record_progress", "failed to load lesson", err)
	}
	if lesson.Status == domain.LessonStatusArchived {
		return nil, ErrLessonArchived
	}

	record, err := domain.NewProgressRecord(userID, lessonID, in.Room,
		in.Score, in.MaxScore, in.TimeSpentSeconds, in.Completed)
	if err != nil {
		return nil, NewLessonServiceError("record_progress", "invalid progress record", err)
	}

	completes := record.CompletesLesson() && lesson.Status == domain.LessonStatusActive

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.progress.WithTx(tx).Create(ctx, record); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		if !completes {
			return nil
		}
		return s.lessons.WithTx(tx).UpdateStatus(ctx, lessonID, domain.LessonStatusCompleted)
	})
	if err != nil {
		log.Error("failed to record progress", "error", err, "lesson_id", lessonID, "room", in.Room)
		return nil, NewLessonServiceError("record_progress", "failed to record progress", err)
	}

	if completes {
		log.Info("lesson completed", "lesson_id", lessonID, "user_id", userID)
	}
	return record, nil
}
