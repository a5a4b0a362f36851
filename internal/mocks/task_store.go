package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/task"
)

type taskRow struct {
	task      task.Task
	status    task.TaskStatus
	errMsg    string
	updatedAt time.Time
}

// TaskStore is an in-memory task.TaskStore.
type TaskStore struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*taskRow
	order []uuid.UUID

	SaveErr error
}

// NewTaskStore creates an empty TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{rows: make(map[uuid.UUID]*taskRow)}
}

var _ task.TaskStore = (*TaskStore)(nil)

// SaveTask implements task.TaskStore.
func (s *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[t.ID()] = &taskRow{task: t, status: t.Status(), updatedAt: time.Now().UTC()}
	s.order = append(s.order, t.ID())
	return nil
}

// UpdateTaskStatus implements task.TaskStore. Unknown ids are ignored.
func (s *TaskStore) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status task.TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.status = status
		row.errMsg = errorMsg
		row.updatedAt = time.Now().UTC()
	}
	return nil
}

// GetPendingTasks implements task.TaskStore.
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.byStatus(task.TaskStatusPending, 0), nil
}

// GetProcessingTasks implements task.TaskStore.
func (s *TaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.byStatus(task.TaskStatusProcessing, olderThan), nil
}

// WithTx implements task.TaskStore. The in-memory store ignores tx.
func (s *TaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return s
}

// StatusOf returns the stored status and error message of a task.
func (s *TaskStore) StatusOf(id uuid.UUID) (task.TaskStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return "", ""
	}
	return row.status, row.errMsg
}

// IDs returns the ids of saved tasks in save order.
func (s *TaskStore) IDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.order...)
}

func (s *TaskStore) byStatus(status task.TaskStatus, olderThan time.Duration) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	var out []task.Task
	for _, id := range s.order {
		row := s.rows[id]
		if row.status != status {
			continue
		}
		if olderThan > 0 && !row.updatedAt.Before(cutoff) {
			continue
		}
		out = append(out, row.task)
	}
	return out
}
