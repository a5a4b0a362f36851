package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is the bounded in-memory hand-off between Submit and the
// workers. Enqueue never blocks: a full queue is reported to the caller,
// which decides what happens to the task.
type TaskQueue struct {
	mu     sync.Mutex
	closed bool
	ch     chan Task
	logger *slog.Logger
}

// NewTaskQueue returns a queue holding at most capacity tasks. A capacity
// of zero only accepts a task when a worker is already waiting.
func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		ch:     make(chan Task, max(capacity, 0)),
		logger: logger,
	}
}

// Enqueue hands task to the workers.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- task:
	default:
		return fmt.Errorf("%w (capacity %d)", ErrQueueFull, cap(q.ch))
	}

	q.logger.Debug("task queued",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"depth", len(q.ch))
	return nil
}

// Tasks is the channel workers receive from. It is closed by Close.
func (q *TaskQueue) Tasks() <-chan Task { return q.ch }

// Len is the number of queued tasks.
func (q *TaskQueue) Len() int { return len(q.ch) }

// Cap is the queue capacity.
func (q *TaskQueue) Cap() int { return cap(q.ch) }

// Close stops the queue accepting tasks. It is safe to call more than once.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
