package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/prompt"
)

// Common errors
var (
	ErrNilRoomService = errors.New("room service cannot be nil")
	ErrNilGenerator   = errors.New("generator cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyLessonID  = errors.New("lesson ID cannot be empty")
	ErrInvalidPayload = errors.New("invalid room generation payload")
)

// RoomService is the slice of the lesson services a generation task needs.
type RoomService interface {
	// LessonForGeneration returns the lesson and, when it exists, its overview.
	LessonForGeneration(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, *domain.OverviewContent, error)

	// StoreGeneratedRoom persists content and marks the room generated.
	StoreGeneratedRoom(ctx context.Context, lessonID uuid.UUID, content *domain.RoomContent) error

	// ReleaseRoom drops the generation claim taken at claimedAt so a later
	// read can retry. A claim taken over since then is left alone.
	ReleaseRoom(ctx context.Context, lessonID uuid.UUID, room domain.RoomType, claimedAt time.Time) error
}

// Generator produces schema-valid JSON for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, p prompt.Prompt) (json.RawMessage, error)
}

// roomGenerationPayload represents the serialized data stored in the task
type roomGenerationPayload struct {
	LessonID  uuid.UUID       `json:"lesson_id"`
	Room      domain.RoomType `json:"room"`
	ClaimedAt time.Time       `json:"claimed_at"`
}

// RoomGenerationTask generates and stores the content of one room of one
// lesson. The caller must hold the room's generation claim.
type RoomGenerationTask struct {
	id        uuid.UUID
	lessonID  uuid.UUID
	room      domain.RoomType
	claimedAt time.Time
	rooms     RoomService
	generator Generator
	logger    *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

// NewRoomGenerationTask creates a new room generation task working under
// the claim taken at claimedAt.
func NewRoomGenerationTask(
	lessonID uuid.UUID,
	room domain.RoomType,
	claimedAt time.Time,
	rooms RoomService,
	generator Generator,
	logger *slog.Logger,
) (*RoomGenerationTask, error) {
	return newRoomGenerationTask(uuid.New(), lessonID, room, claimedAt, rooms, generator, logger)
}

func newRoomGenerationTask(
	id, lessonID uuid.UUID,
	room domain.RoomType,
	claimedAt time.Time,
	rooms RoomService,
	generator Generator,
	logger *slog.Logger,
) (*RoomGenerationTask, error) {
	if rooms == nil {
		return nil, ErrNilRoomService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if lessonID == uuid.Nil {
		return nil, ErrEmptyLessonID
	}
	parsed, err := domain.ParseRoomType(string(room))
	if err != nil {
		return nil, err
	}

	return &RoomGenerationTask{
		id:        id,
		lessonID:  lessonID,
		room:      parsed,
		claimedAt: claimedAt,
		rooms:     rooms,
		generator: generator,
		logger: logger.With(
			"task_type", TaskTypeRoomGeneration,
			"lesson_id", lessonID,
			"room", parsed),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *RoomGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *RoomGenerationTask) Type() string {
	return TaskTypeRoomGeneration
}

// LessonID returns the lesson whose room is generated.
func (t *RoomGenerationTask) LessonID() uuid.UUID {
	return t.lessonID
}

// Room returns the room the task generates.
func (t *RoomGenerationTask) Room() domain.RoomType {
	return t.room
}

// ClaimedAt returns the token of the generation claim the task holds.
func (t *RoomGenerationTask) ClaimedAt() time.Time {
	return t.claimedAt
}

// Payload returns the task data as a byte slice
func (t *RoomGenerationTask) Payload() []byte {
	data, err := json.Marshal(roomGenerationPayload{LessonID: t.lessonID, Room: t.room, ClaimedAt: t.claimedAt})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *RoomGenerationTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *RoomGenerationTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute composes the room prompt, generates the content, validates it
// and stores it. Any failure releases the claim before returning.
func (t *RoomGenerationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	t.logger.Info("starting room generation task")

	if err := t.run(ctx); err != nil {
		t.setStatus(TaskStatusFailed)
		t.logger.Error("room generation failed", "error", err)

		// The claim must be released even when ctx was cancelled.
		if releaseErr := t.rooms.ReleaseRoom(context.WithoutCancel(ctx), t.lessonID, t.room, t.claimedAt); releaseErr != nil {
			t.logger.Error("failed to release room claim", "error", releaseErr)
		}
		return err
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.Info("room generation task completed")
	return nil
}

func (t *RoomGenerationTask) run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	lesson, overview, err := t.rooms.LessonForGeneration(ctx, t.lessonID)
	if err != nil {
		return fmt.Errorf("failed to load lesson: %w", err)
	}

	in := prompt.Input{
		Content:   lesson.Content,
		Category:  lesson.Category,
		ExamFocus: lesson.ExamFocus,
		Subject:   lesson.Subject,
	}

	var p prompt.Prompt
	if t.room == domain.RoomClarity {
		p, err = prompt.ComposeOverview(in)
	} else {
		p, err = prompt.ComposeRoom(t.room, in, overview)
	}
	if err != nil {
		return fmt.Errorf("failed to compose prompt: %w", err)
	}

	raw, err := t.generator.Generate(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to generate %s content: %w", t.room, err)
	}

	content, err := domain.DecodeRoomContent(t.room, raw)
	if err != nil {
		return fmt.Errorf("failed to decode %s content: %w", t.room, err)
	}

	if err := t.rooms.StoreGeneratedRoom(ctx, t.lessonID, content); err != nil {
		return fmt.Errorf("failed to store %s content: %w", t.room, err)
	}

	t.logger.Info("room content stored", "items", content.ItemCount())
	return nil
}
