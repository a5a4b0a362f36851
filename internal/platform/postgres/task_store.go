package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/store"
	"github.com/phrazzld/studyrooms-api/internal/task"
)

const selectTasks = `
	SELECT id, type, payload, status, error_message, attempts
	FROM tasks
`

// rehydrators is shared between a store and its WithTx copies.
type rehydrators struct {
	mu  sync.RWMutex
	fns map[string]task.Rehydrator
}

func (r *rehydrators) get(taskType string) (task.Rehydrator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[taskType]
	return fn, ok
}

// PostgresTaskStore persists background tasks in the tasks table. Rows read
// back during recovery are rebuilt by the rehydrator registered for their
// type.
type PostgresTaskStore struct {
	db          store.DBTX
	logger      *slog.Logger
	rehydrators *rehydrators
}

var _ task.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a task store on db.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:          db,
		logger:      logger.With(slog.String("component", "task_store")),
		rehydrators: &rehydrators{fns: make(map[string]task.Rehydrator)},
	}
}

// RegisterRehydrator sets how tasks of taskType are rebuilt from their rows.
func (s *PostgresTaskStore) RegisterRehydrator(taskType string, fn task.Rehydrator) {
	s.rehydrators.mu.Lock()
	defer s.rehydrators.mu.Unlock()
	s.rehydrators.fns[taskType] = fn
}

// SaveTask inserts a new task row.
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, t.ID(), t.Type(), t.Payload(), t.Status(), now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save task to database: %w", MapError(err))
	}
	return nil
}

// UpdateTaskStatus records a status transition. Entering processing counts
// an attempt; terminal statuses stamp finished_at. A missing task is a
// no-op so late updates for pruned rows do not fail a worker.
func (s *PostgresTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("task_id", taskID.String()),
		slog.String("status", string(status)))

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = $1,
		    error_message = NULLIF($2, ''),
		    attempts = attempts + CASE WHEN $1::text = 'processing' THEN 1 ELSE 0 END,
		    finished_at = CASE WHEN $3 THEN $4::timestamptz ELSE NULL END,
		    updated_at = $4
		WHERE id = $5
	`, status, errorMsg, status.Terminal(), time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to update task status", slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("status update for unknown task ignored")
			return nil
		}
		return err
	}
	return nil
}

// GetPendingTasks returns pending tasks, oldest first.
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.list(ctx, selectTasks+`WHERE status = $1 ORDER BY created_at ASC`, task.TaskStatusPending)
}

// GetProcessingTasks returns processing tasks, limited to those untouched
// for at least olderThan when it is positive.
func (s *PostgresTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	if olderThan <= 0 {
		return s.list(ctx, selectTasks+`WHERE status = $1 ORDER BY created_at ASC`, task.TaskStatusProcessing)
	}
	return s.list(ctx, selectTasks+`WHERE status = $1 AND updated_at < $2 ORDER BY created_at ASC`,
		task.TaskStatusProcessing, time.Now().UTC().Add(-olderThan))
}

// WithTx returns a store bound to tx that shares this store's rehydrators.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger, rehydrators: s.rehydrators}
}

func (s *PostgresTaskStore) list(ctx context.Context, query string, args ...any) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		var (
			row    storedTask
			errMsg sql.NullString
		)
		if err := rows.Scan(&row.id, &row.taskType, &row.payload, &row.status, &errMsg, &row.attempts); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		row.lastError = errMsg.String
		tasks = append(tasks, s.rehydrate(log, &row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// rehydrate rebuilds the concrete task for row. Rows that cannot be rebuilt
// come back as storedTask values whose Execute fails, so the runner marks
// them failed instead of dropping them silently.
func (s *PostgresTaskStore) rehydrate(log *slog.Logger, row *storedTask) task.Task {
	fn, ok := s.rehydrators.get(row.taskType)
	if !ok {
		return row
	}
	t, err := fn(row.id, row.payload)
	if err != nil {
		log.Error("failed to rehydrate task",
			slog.String("task_id", row.id.String()),
			slog.String("task_type", row.taskType),
			slog.Int("attempts", row.attempts),
			slog.String("error", err.Error()))
		row.rehydrateErr = err
		return row
	}
	return t
}

// storedTask is a task row without a runnable implementation.
type storedTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	attempts     int
	lastError    string
	rehydrateErr error
}

func (t *storedTask) ID() uuid.UUID           { return t.id }
func (t *storedTask) Type() string            { return t.taskType }
func (t *storedTask) Payload() []byte         { return t.payload }
func (t *storedTask) Status() task.TaskStatus { return t.status }

func (t *storedTask) Execute(context.Context) error {
	if t.rehydrateErr != nil {
		return fmt.Errorf("recovered task cannot run: %w", t.rehydrateErr)
	}
	return fmt.Errorf("no rehydrator registered for task type %q", t.taskType)
}
