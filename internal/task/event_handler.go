package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/events"
)

// TaskCreator builds a room generation task.
type TaskCreator interface {
	CreateTask(lessonID uuid.UUID, room domain.RoomType, claimedAt time.Time) (Task, error)
}

// TaskSubmitter accepts tasks for background execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to turn room generation requests into submitted tasks.
type TaskFactoryEventHandler struct {
	taskFactory TaskCreator
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given task factory
// to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory TaskCreator,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
// Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != events.TypeRoomGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	req, err := event.RoomRequest()
	if err != nil {
		h.logger.Error("malformed room generation event", "error", err, "event_id", event.ID)
		return fmt.Errorf("malformed room generation event: %w", err)
	}

	task, err := h.taskFactory.CreateTask(req.LessonID, req.Room, req.ClaimedAt)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"lesson_id", req.LessonID,
			"room", req.Room,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"lesson_id", req.LessonID,
			"room", req.Room,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("room generation task submitted",
		"task_id", task.ID(),
		"lesson_id", req.LessonID,
		"room", req.Room,
		"event_id", event.ID)

	return nil
}
