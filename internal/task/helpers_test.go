package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// MockTask is a simple implementation of the Task interface for testing
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus
	ExecuteFn   func(ctx context.Context) error
}

// NewMockTask creates a new MockTask with the given ID and type
func NewMockTask(id uuid.UUID, taskType string, payload []byte) *MockTask {
	return &MockTask{
		TaskID:      id,
		TaskType:    taskType,
		TaskPayload: payload,
		TaskStatus:  TaskStatusPending,
		ExecuteFn:   func(ctx context.Context) error { return nil },
	}
}

func (t *MockTask) ID() uuid.UUID                     { return t.TaskID }
func (t *MockTask) Type() string                      { return t.TaskType }
func (t *MockTask) Payload() []byte                   { return t.TaskPayload }
func (t *MockTask) Status() TaskStatus                { return t.TaskStatus }
func (t *MockTask) Execute(ctx context.Context) error { return t.ExecuteFn(ctx) }

// CreateMockTaskWithPayload creates a MockTask carrying a room generation
// payload for room.
func CreateMockTaskWithPayload(room domain.RoomType) *MockTask {
	data, _ := json.Marshal(roomGenerationPayload{LessonID: uuid.New(), Room: room})
	return NewMockTask(uuid.New(), "mock_task", data)
}

// MockTaskStore implements the TaskStore interface in memory. Status
// changes are recorded per task so tests can assert on them without
// touching the task values the runner holds.
type MockTaskStore struct {
	mutex           sync.RWMutex
	tasks           map[uuid.UUID]Task
	statuses        map[uuid.UUID]TaskStatus
	errorMessages   map[uuid.UUID]string
	taskStatusTimes map[uuid.UUID]time.Time
	SaveFn          func(ctx context.Context, task Task) error
	UpdateStatusFn  func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

// NewMockTaskStore creates a new MockTaskStore with default implementations
func NewMockTaskStore() *MockTaskStore {
	s := &MockTaskStore{
		tasks:           make(map[uuid.UUID]Task),
		statuses:        make(map[uuid.UUID]TaskStatus),
		errorMessages:   make(map[uuid.UUID]string),
		taskStatusTimes: make(map[uuid.UUID]time.Time),
	}

	s.SaveFn = func(ctx context.Context, task Task) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		s.tasks[task.ID()] = task
		s.statuses[task.ID()] = task.Status()
		s.taskStatusTimes[task.ID()] = time.Now()
		return nil
	}

	s.UpdateStatusFn = func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		if _, ok := s.tasks[taskID]; !ok {
			return nil
		}
		s.statuses[taskID] = status
		s.errorMessages[taskID] = errorMsg
		s.taskStatusTimes[taskID] = time.Now()
		return nil
	}

	return s
}

func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	return s.SaveFn(ctx, task)
}

func (s *MockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
}

func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

func (s *MockTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []Task {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := time.Now()
	var out []Task
	for id, task := range s.tasks {
		if s.statuses[id] != status {
			continue
		}
		if olderThan > 0 && now.Sub(s.taskStatusTimes[id]) <= olderThan {
			continue
		}
		out = append(out, task)
	}
	return out
}

// StatusOf returns the last status recorded for id.
func (s *MockTaskStore) StatusOf(id uuid.UUID) (TaskStatus, string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.statuses[id], s.errorMessages[id]
}

// setStatus forces a status and its timestamp.
func (s *MockTaskStore) setStatus(id uuid.UUID, status TaskStatus, at time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.statuses[id] = status
	s.taskStatusTimes[id] = at
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func extractTaskIDs(tasks []Task) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID()
	}
	return ids
}
