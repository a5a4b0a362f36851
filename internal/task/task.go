package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a persisted task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transitions are expected. Failed rows
// are kept as a record of what went wrong.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskTypeRoomGeneration generates the content of one lesson room.
const TaskTypeRoomGeneration = "room_generation"

// Task is a unit of background work. Payload must be enough for a
// Rehydrator to rebuild the task after a restart.
type Task interface {
	ID() uuid.UUID
	Type() string
	Payload() []byte
	Status() TaskStatus
	Execute(ctx context.Context) error
}

// Rehydrator rebuilds a persisted task from its id and payload.
type Rehydrator func(id uuid.UUID, payload []byte) (Task, error)

// TaskStore persists tasks so queued work survives a restart.
type TaskStore interface {
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus records a transition. errorMsg is stored for failed
	// tasks and cleared otherwise.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks returns processing tasks, restricted to those that
	// have been processing for at least olderThan when it is non-zero.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	WithTx(tx *sql.Tx) TaskStore
}
