package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ErrTaskPanicked is returned for tasks whose Execute panicked.
var ErrTaskPanicked = errors.New("task panicked")

const defaultStuckCheckInterval = 5 * time.Minute

// TaskRunnerConfig sizes the runner.
type TaskRunnerConfig struct {
	WorkerCount int
	QueueSize   int

	// StuckTaskAge is how long a task may stay processing before the
	// monitor resets it to pending.
	StuckTaskAge time.Duration
	// StuckTaskCheckInterval defaults to five minutes.
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns the configuration used when none is given.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: defaultStuckCheckInterval,
	}
}

func (c TaskRunnerConfig) withDefaults() TaskRunnerConfig {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 1
	}
	if c.StuckTaskCheckInterval <= 0 {
		c.StuckTaskCheckInterval = defaultStuckCheckInterval
	}
	return c
}

// CompletionHook is called after every task execution with the task type
// and the execution error, if any.
type CompletionHook func(ctx context.Context, taskType string, err error)

// TaskRunner executes tasks on a fixed pool of workers. A task is persisted
// before it is queued, and its status in the store follows it through
// processing to completed or failed, so a restart can pick up whatever was
// left unfinished.
type TaskRunner struct {
	store  TaskStore
	queue  *TaskQueue
	cfg    TaskRunnerConfig
	log    *slog.Logger
	tracer trace.Tracer
	hook   CompletionHook

	// submitted holds tasks queued by Submit, which Recover must not
	// queue a second time.
	mu        sync.Mutex
	submitted map[uuid.UUID]struct{}

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewTaskRunner creates a runner. Nothing runs until Start.
func NewTaskRunner(store TaskStore, cfg TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_runner"))
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	return &TaskRunner{
		store:  store,
		queue:  NewTaskQueue(cfg.QueueSize, logger),
		cfg:    cfg,
		log:    logger,
		tracer: noop.NewTracerProvider().Tracer(""),
		hook:   func(context.Context, string, error) {},

		submitted: make(map[uuid.UUID]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetTracer sets the tracer used to span task executions.
func (r *TaskRunner) SetTracer(tracer trace.Tracer) {
	if tracer != nil {
		r.tracer = tracer
	}
}

// SetCompletionHook registers a hook called after every execution.
func (r *TaskRunner) SetCompletionHook(hook CompletionHook) {
	if hook != nil {
		r.hook = hook
	}
}

// Submit persists task and queues it. A task that does not fit in the
// queue is marked failed in the store, so recovery will not run it later,
// and the error wraps ErrQueueFull.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	// Marked before saving so a concurrent Recover never sees it pending
	// without also seeing the mark.
	r.setSubmitted(task.ID(), true)

	if err := r.store.SaveTask(ctx, task); err != nil {
		r.setSubmitted(task.ID(), false)
		return fmt.Errorf("failed to save task: %w", err)
	}

	err := r.queue.Enqueue(task)
	if err == nil {
		return nil
	}
	r.setSubmitted(task.ID(), false)
	if markErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); markErr != nil {
		r.log.ErrorContext(ctx, "failed to mark rejected task as failed",
			"task_id", task.ID(), "error", markErr)
	}
	return fmt.Errorf("failed to queue task: %w", err)
}

// Start recovers unfinished tasks, then starts the workers and the stuck
// task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.wg.Add(r.cfg.WorkerCount + 1)
	for i := range r.cfg.WorkerCount {
		go r.worker(i)
	}
	go r.monitorStuck()
	return nil
}

// Stop cancels the workers and waits for them. Tasks still queued stay
// pending in the store and are recovered on the next start. Stop is safe to
// call more than once.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		r.wg.Wait()
		r.queue.Close()
	})
}

// Recover queues every pending task and resets tasks a previous process
// left processing.
func (r *TaskRunner) Recover() error {
	ctx := r.ctx

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}
	interrupted, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.log.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(interrupted))

	for _, task := range pending {
		if r.alreadySubmitted(task.ID()) {
			continue
		}
		r.requeue(task, "pending")
	}
	r.resetAndRequeue(ctx, interrupted, "interrupted", "Reset after recovery")
	return nil
}

func (r *TaskRunner) setSubmitted(id uuid.UUID, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if on {
		r.submitted[id] = struct{}{}
	} else {
		delete(r.submitted, id)
	}
}

func (r *TaskRunner) alreadySubmitted(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.submitted[id]
	return ok
}

func (r *TaskRunner) resetAndRequeue(ctx context.Context, tasks []Task, origin, reason string) {
	for _, task := range tasks {
		if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusPending, reason); err != nil {
			r.log.Error("failed to reset task to pending",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"origin", origin,
				"error", err)
			continue
		}
		r.requeue(task, origin)
	}
}

func (r *TaskRunner) requeue(task Task, origin string) {
	if err := r.queue.Enqueue(task); err != nil {
		r.log.Error("failed to requeue task",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"origin", origin,
			"error", err)
	}
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case task, ok := <-r.queue.Tasks():
			if !ok {
				return
			}
			r.setSubmitted(task.ID(), false)
			r.run(task, id)
		}
	}
}

// run executes one task inside its own span. Task execution is detached
// from the runner's context so Stop does not cut a generation short.
func (r *TaskRunner) run(task Task, workerID int) {
	ctx, span := r.tracer.Start(context.Background(), "task."+task.Type(),
		trace.WithAttributes(
			attribute.String("task.id", task.ID().String()),
			attribute.String("task.type", task.Type()),
			attribute.Int("worker.id", workerID),
		))
	defer span.End()

	log := r.log.With("task_id", task.ID(), "task_type", task.Type(), "worker_id", workerID)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.ErrorContext(ctx, "failed to mark task processing", "error", err)
		span.SetStatus(codes.Error, "status update failed")
		return
	}
	log.InfoContext(ctx, "processing task")

	start := time.Now()
	err := execute(ctx, task)
	r.hook(ctx, task.Type(), err)

	status, msg := TaskStatusCompleted, ""
	if err != nil {
		status, msg = TaskStatusFailed, err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "task failed")
		log.ErrorContext(ctx, "task execution failed", "error", err, "duration", time.Since(start))
	} else {
		log.InfoContext(ctx, "task completed", "duration", time.Since(start))
	}

	if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), status, msg); updateErr != nil {
		log.ErrorContext(ctx, "failed to record task outcome",
			"status", string(status), "error", updateErr)
	}
}

// execute runs the task, turning a panic into ErrTaskPanicked so a bad task
// cannot take its worker down.
func execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, p)
		}
	}()
	return task.Execute(ctx)
}

// monitorStuck periodically resets tasks that have been processing longer
// than StuckTaskAge.
func (r *TaskRunner) monitorStuck() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			stuck, err := r.store.GetProcessingTasks(r.ctx, r.cfg.StuckTaskAge)
			if err != nil {
				r.log.Error("failed to check for stuck tasks", "error", err)
				continue
			}
			if len(stuck) > 0 {
				r.log.Warn("resetting stuck tasks", "count", len(stuck))
				r.resetAndRequeue(r.ctx, stuck, "stuck", "Reset after being stuck in processing state")
			}
		}
	}
}
