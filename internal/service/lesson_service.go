package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/classifier"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/placeholder"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/prompt"
	"github.com/phrazzld/studyrooms-api/internal/source"
	"github.com/phrazzld/studyrooms-api/internal/store"
)

// Page bounds for ListLessons.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SourceResolver turns a raw submission into study material.
type SourceResolver interface {
	Resolve(ctx context.Context, raw string) (source.Material, error)
}

// ContentGenerator produces schema-valid JSON for a composed prompt.
type ContentGenerator interface {
	Generate(ctx context.Context, p prompt.Prompt) (json.RawMessage, error)
}

// CreateLessonInput is a learner's lesson submission. Category and
// ExamFocus, when set, skip classification of that field.
type CreateLessonInput struct {
	RawContent string
	Category   *domain.Category
	ExamFocus  *domain.ExamFocus
	Subject    string
}

// CreatedLesson is the result of CreateLesson. OverviewState is generated
// when the overview was stored, placeholder when generation failed.
type CreatedLesson struct {
	Lesson        *domain.Lesson
	Overview      *domain.OverviewContent
	OverviewState domain.ArtifactState
}

// LessonService manages the lifecycle of lessons.
type LessonService interface {
	// CreateLesson resolves, classifies and stores a lesson, generating its
	// overview before returning. Overview generation failures are absorbed.
	CreateLesson(ctx context.Context, userID uuid.UUID, in CreateLessonInput) (*CreatedLesson, error)

	// GetLesson returns a lesson owned by userID.
	GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*domain.Lesson, error)

	// ListLessons returns userID's lessons, newest first.
	ListLessons(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Lesson, error)

	// ArchiveLesson moves a lesson out of the learner's active list.
	ArchiveLesson(ctx context.Context, userID, lessonID uuid.UUID) (*domain.Lesson, error)
}

// LessonServiceDeps are the collaborators of the lesson service.
type LessonServiceDeps struct {
	DB        *sql.DB
	Lessons   store.LessonStore
	Artifacts store.ArtifactStore
	Claims    store.ClaimStore
	Sources   SourceResolver
	Generator ContentGenerator
}

type lessonServiceImpl struct {
	db        *sql.DB
	lessons   store.LessonStore
	artifacts store.ArtifactStore
	claims    store.ClaimStore
	sources   SourceResolver
	generator ContentGenerator
	logger    *slog.Logger
}

// NewLessonService creates a new LessonService.
// It returns an error if any of the required dependencies are nil.
func NewLessonService(deps LessonServiceDeps, logger *slog.Logger) (LessonService, error) {
	switch {
	case deps.DB == nil:
		return nil, missingDependency("db")
	case deps.Lessons == nil:
		return nil, missingDependency("lessons")
	case deps.Artifacts == nil:
		return nil, missingDependency("artifacts")
	case deps.Claims == nil:
		return nil, missingDependency("claims")
	case deps.Sources == nil:
		return nil, missingDependency("sources")
	case deps.Generator == nil:
		return nil, missingDependency("generator")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &lessonServiceImpl{
		db:        deps.DB,
		lessons:   deps.Lessons,
		artifacts: deps.Artifacts,
		claims:    deps.Claims,
		sources:   deps.Sources,
		generator: deps.Generator,
		logger:    logger.With("component", "lesson_service"),
	}, nil
}

func missingDependency(name string) error {
	return &LessonServiceError{
		Operation: "create_service",
		Message:   name + " cannot be nil",
	}
}

// CreateLesson implements LessonService.
func (s *lessonServiceImpl) CreateLesson(
	ctx context.Context,
	userID uuid.UUID,
	in CreateLessonInput,
) (*CreatedLesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	material, err := s.sources.Resolve(ctx, in.RawContent)
	if err != nil {
		log.Warn("failed to resolve lesson source", "error", err, "user_id", userID)
		return nil, NewLessonServiceError("create_lesson", "failed to resolve source", err)
	}

	classified := classifier.ClassifyWithOverrides(
		strings.Join([]string{material.Title, in.Subject, material.Content}, "\n"),
		classifier.Overrides{Category: in.Category, ExamFocus: in.ExamFocus},
	)

	title := strings.TrimSpace(material.Title)
	if title == "" {
		title = domain.TitleFromContent(material.Content)
	}

	lesson, err := domain.NewLesson(userID, title, material.Content, material.Kind,
		classified.Category, classified.ExamFocus)
	if err != nil {
		return nil, NewLessonServiceError("create_lesson", "invalid lesson", err)
	}
	lesson.Subject = strings.TrimSpace(in.Subject)
	lesson.SourceURL = material.URL

	overview := s.generateOverview(ctx, lesson)
	if overview != nil {
		lesson.Difficulty = overview.Overview.Difficulty
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.lessons.WithTx(tx).Create(ctx, lesson); err != nil {
			return fmt.Errorf("failed to save lesson: %w", err)
		}
		if overview == nil {
			return nil
		}
		if err := s.artifacts.WithTx(tx).SaveRoom(ctx, lesson.ID, overview); err != nil {
			return fmt.Errorf("failed to save overview: %w", err)
		}
		return s.claims.WithTx(tx).MarkGenerated(ctx, lesson.ID, domain.RoomClarity)
	})
	if err != nil {
		log.Error("failed to store lesson", "error", err, "user_id", userID, "lesson_id", lesson.ID)
		return nil, NewLessonServiceError("create_lesson", "failed to store lesson", err)
	}

	log.Info("lesson created",
		"lesson_id", lesson.ID,
		"user_id", userID,
		"category", lesson.Category,
		"exam_focus", lesson.ExamFocus,
		"overview_generated", overview != nil)

	if overview == nil {
		return &CreatedLesson{
			Lesson:        lesson,
			Overview:      placeholder.Overview(lesson.Title, lesson.Category),
			OverviewState: domain.ArtifactPlaceholder,
		}, nil
	}
	return &CreatedLesson{
		Lesson:        lesson,
		Overview:      overview.Overview,
		OverviewState: domain.ArtifactGenerated,
	}, nil
}

// generateOverview returns nil when the overview could not be produced.
func (s *lessonServiceImpl) generateOverview(ctx context.Context, lesson *domain.Lesson) *domain.RoomContent {
	log := logger.FromContextOrDefault(ctx, s.logger).With("lesson_id", lesson.ID)

	p, err := prompt.ComposeOverview(prompt.Input{
		Content:   lesson.Content,
		Category:  lesson.Category,
		ExamFocus: lesson.ExamFocus,
		Subject:   lesson.Subject,
	})
	if err != nil {
		log.Error("failed to compose overview prompt", "error", err)
		return nil
	}

	raw, err := s.generator.Generate(ctx, p)
	if err != nil {
		log.Error("overview generation failed, serving placeholder", "error", err)
		return nil
	}

	content, err := domain.DecodeRoomContent(domain.RoomClarity, raw)
	if err != nil {
		log.Error("generated overview is invalid, serving placeholder", "error", err)
		return nil
	}
	return content
}

// GetLesson implements LessonService.
func (s *lessonServiceImpl) GetLesson(ctx context.Context, userID, lessonID uuid.UUID) (*domain.Lesson, error) {
	lesson, err := ownedLesson(ctx, s.lessons, userID, lessonID)
	if err != nil {
		return nil, NewLessonServiceError("get_lesson", "failed to load lesson", err)
	}
	return lesson, nil
}

// ListLessons implements LessonService.
func (s *lessonServiceImpl) ListLessons(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Lesson, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	lessons, err := s.lessons.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewLessonServiceError("list_lessons", "failed to list lessons", err)
	}
	return lessons, nil
}

// ArchiveLesson implements LessonService.
func (s *lessonServiceImpl) ArchiveLesson(ctx context.Context, userID, lessonID uuid.UUID) (*domain.Lesson, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	lesson, err := ownedLesson(ctx, s.lessons, userID, lessonID)
	if err != nil {
		return nil, NewLessonServiceError("archive_lesson", "failed to load lesson", err)
	}
	if lesson.Status == domain.LessonStatusArchived {
		return lesson, nil
	}

	if err := s.lessons.UpdateStatus(ctx, lessonID, domain.LessonStatusArchived); err != nil {
		log.Error("failed to archive lesson", "error", err, "lesson_id", lessonID)
		return nil, NewLessonServiceError("archive_lesson", "failed to archive lesson", err)
	}
	lesson.Archive()

	log.Info("lesson archived", "lesson_id", lessonID, "user_id", userID)
	return lesson, nil
}

// ownedLesson loads a lesson and checks that userID owns it.
func ownedLesson(ctx context.Context, lessons store.LessonStore, userID, lessonID uuid.UUID) (*domain.Lesson, error) {
	lesson, err := lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, store.ErrLessonNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	if !lesson.IsOwnedBy(userID) {
		return nil, ErrNotOwned
	}
	return lesson, nil
}
