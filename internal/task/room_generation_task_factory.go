package task

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// RoomGenerationTaskFactory creates RoomGenerationTask instances
type RoomGenerationTaskFactory struct {
	rooms     RoomService
	generator Generator
	logger    *slog.Logger
}

// NewRoomGenerationTaskFactory creates a new factory for RoomGenerationTasks
func NewRoomGenerationTaskFactory(
	rooms RoomService,
	generator Generator,
	logger *slog.Logger,
) *RoomGenerationTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomGenerationTaskFactory{
		rooms:     rooms,
		generator: generator,
		logger:    logger.With("component", "room_generation_task_factory"),
	}
}

// CreateTask creates a new RoomGenerationTask for room of the lesson
func (f *RoomGenerationTaskFactory) CreateTask(lessonID uuid.UUID, room domain.RoomType, claimedAt time.Time) (Task, error) {
	return NewRoomGenerationTask(lessonID, room, claimedAt, f.rooms, f.generator, f.logger)
}

// Rehydrate rebuilds a persisted room generation task. It satisfies
// Rehydrator and is registered with the task store for recovery.
func (f *RoomGenerationTaskFactory) Rehydrate(id uuid.UUID, payload []byte) (Task, error) {
	var p roomGenerationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return newRoomGenerationTask(id, p.LessonID, p.Room, p.ClaimedAt, f.rooms, f.generator, f.logger)
}
