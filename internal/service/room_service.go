package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/events"
	"github.com/phrazzld/studyrooms-api/internal/placeholder"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/store"
	"github.com/phrazzld/studyrooms-api/internal/task"
)

// DefaultClaimStaleAfter is how long a generation claim may stay
// generating before another read can take it over.
const DefaultClaimStaleAfter = 15 * time.Minute

// RoomView is the denormalized payload of one room: the lesson it belongs
// to, its content and the caller's progress on the lesson.
type RoomView struct {
	Mission  *domain.Lesson
	Room     domain.RoomType
	State    domain.ArtifactState
	Content  domain.RoomContent
	Progress []*domain.ProgressRecord
}

// RoomService assembles room content and owns its generation lifecycle.
type RoomService interface {
	// GetRoomContent returns the room for its owner. A room with no stored
	// content is served as a placeholder and, unless generation is already
	// claimed, generation is scheduled. Only ownership and lesson lookup
	// failures are returned as errors.
	GetRoomContent(ctx context.Context, userID, lessonID uuid.UUID, room domain.RoomType) (*RoomView, error)

	task.RoomService
}

// RoomServiceDeps are the collaborators of the room service.
type RoomServiceDeps struct {
	DB        *sql.DB
	Lessons   store.LessonStore
	Artifacts store.ArtifactStore
	Claims    store.ClaimStore
	Progress  store.ProgressStore
	Events    events.EventEmitter

	// StaleAfter defaults to DefaultClaimStaleAfter.
	StaleAfter time.Duration
}

type roomServiceImpl struct {
	db         *sql.DB
	lessons    store.LessonStore
	artifacts  store.ArtifactStore
	claims     store.ClaimStore
	progress   store.ProgressStore
	events     events.EventEmitter
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewRoomService creates a new RoomService.
// It returns an error if any of the required dependencies are nil.
func NewRoomService(deps RoomServiceDeps, logger *slog.Logger) (RoomService, error) {
	switch {
	case deps.DB == nil:
		return nil, missingDependency("db")
	case deps.Lessons == nil:
		return nil, missingDependency("lessons")
	case deps.Artifacts == nil:
		return nil, missingDependency("artifacts")
	case deps.Claims == nil:
		return nil, missingDependency("claims")
	case deps.Progress == nil:
		return nil, missingDependency("progress")
	case deps.Events == nil:
		return nil, missingDependency("events")
	}

	if deps.StaleAfter <= 0 {
		deps.StaleAfter = DefaultClaimStaleAfter
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &roomServiceImpl{
		db:         deps.DB,
		lessons:    deps.Lessons,
		artifacts:  deps.Artifacts,
		claims:     deps.Claims,
		progress:   deps.Progress,
		events:     deps.Events,
		staleAfter: deps.StaleAfter,
		logger:     logger.With("component", "room_service"),
	}, nil
}

// GetRoomContent implements RoomService.
func (s *roomServiceImpl) GetRoomContent(
	ctx context.Context,
	userID, lessonID uuid.UUID,
	room domain.RoomType,
) (*RoomView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("lesson_id", lessonID, "room", room)

	lesson, err := ownedLesson(ctx, s.lessons, userID, lessonID)
	if err != nil {
		if !errors.Is(err, ErrNotOwned) && !errors.Is(err, ErrLessonNotFound) {
			log.Error("failed to load lesson", "error", err)
		}
		return nil, NewLessonServiceError("get_room_content", "failed to load lesson", err)
	}

	view := &RoomView{Mission: lesson, Room: room}

	content, err := s.artifacts.GetRoom(ctx, lessonID, room)
	switch {
	case err == nil:
		view.State = domain.ArtifactGenerated
		view.Content = *content
	case errors.Is(err, store.ErrArtifactNotFound):
		view.State = domain.ArtifactPlaceholder
		view.Content = placeholder.For(room, lesson)
		s.scheduleGeneration(ctx, lessonID, room)
	default:
		log.Error("failed to read room content, serving placeholder", "error", err)
		view.State = domain.ArtifactPlaceholder
		view.Content = placeholder.For(room, lesson)
	}

	progress, err := s.progress.ListByLesson(ctx, userID, lessonID)
	if err != nil {
		log.Error("failed to read progress, serving none", "error", err)
		progress = []*domain.ProgressRecord{}
	}
	view.Progress = progress

	return view, nil
}

// scheduleGeneration claims the room and requests its generation. Losing
// the claim means generation is already in flight and nothing is scheduled.
func (s *roomServiceImpl) scheduleGeneration(ctx context.Context, lessonID uuid.UUID, room domain.RoomType) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("lesson_id", lessonID, "room", room)

	claimedAt, claimed, err := s.claims.TryClaim(ctx, lessonID, room, s.staleAfter)
	if err != nil {
		log.Error("failed to claim room for generation", "error", err)
		return
	}
	if !claimed {
		log.Debug("room generation already in flight")
		return
	}

	event, err := events.NewRoomGenerationEvent(lessonID, string(room), claimedAt)
	if err == nil {
		err = s.events.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Error("failed to schedule room generation", "error", err)
		if releaseErr := s.claims.Release(context.WithoutCancel(ctx), lessonID, room, claimedAt); releaseErr != nil {
			log.Error("failed to release room claim", "error", releaseErr)
		}
		return
	}

	log.Info("room generation scheduled", "event_id", event.ID)
}

// LessonForGeneration implements task.RoomService. A missing or unreadable
// overview yields a nil overview rather than an error.
func (s *roomServiceImpl) LessonForGeneration(
	ctx context.Context,
	lessonID uuid.UUID,
) (*domain.Lesson, *domain.OverviewContent, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, nil, NewLessonServiceError("lesson_for_generation", "failed to load lesson", err)
	}

	overview, err := s.artifacts.GetRoom(ctx, lessonID, domain.RoomClarity)
	if err != nil {
		if !errors.Is(err, store.ErrArtifactNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Warn("failed to read overview context",
				"error", err, "lesson_id", lessonID)
		}
		return lesson, nil, nil
	}
	return lesson, overview.Overview, nil
}

// StoreGeneratedRoom implements task.RoomService. Content for a room that
// is already generated is dropped so stored content is never replaced.
func (s *roomServiceImpl) StoreGeneratedRoom(
	ctx context.Context,
	lessonID uuid.UUID,
	content *domain.RoomContent,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With("lesson_id", lessonID, "room", content.Room)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		claims := s.claims.WithTx(tx)

		claim, err := claims.Get(ctx, lessonID, content.Room)
		switch {
		case err == nil && claim.Status == domain.ClaimGenerated:
			log.Warn("room already generated, dropping duplicate content")
			return nil
		case err != nil && !errors.Is(err, store.ErrClaimNotFound):
			return fmt.Errorf("failed to read claim: %w", err)
		}

		err = s.artifacts.WithTx(tx).SaveRoom(ctx, lessonID, content)
		switch {
		case errors.Is(err, store.ErrDuplicate):
			log.Warn("overview already stored, keeping existing overview")
		case err != nil:
			return fmt.Errorf("failed to save content: %w", err)
		}

		return claims.MarkGenerated(ctx, lessonID, content.Room)
	})
	if err != nil {
		return NewLessonServiceError("store_generated_room", "failed to store room content", err)
	}
	return nil
}

// ReleaseRoom implements task.RoomService.
func (s *roomServiceImpl) ReleaseRoom(
	ctx context.Context,
	lessonID uuid.UUID,
	room domain.RoomType,
	claimedAt time.Time,
) error {
	if err := s.claims.Release(ctx, lessonID, room, claimedAt); err != nil {
		return NewLessonServiceError("release_room", "failed to release claim", err)
	}
	return nil
}
