package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// waitForStatus polls the store until id reaches want or the deadline passes.
func waitForStatus(t *testing.T, store *MockTaskStore, id uuid.UUID, want TaskStatus) string {
	t.Helper()
	var msg string
	require.Eventually(t, func() bool {
		var status TaskStatus
		status, msg = store.StatusOf(id)
		return status == want
	}, 2*time.Second, 10*time.Millisecond, "task %s never reached %s", id, want)
	return msg
}

func TestTaskRunner_Submit(t *testing.T) {
	t.Parallel()

	logger := discardLogger()

	t.Run("successful submission", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), logger)

		task := CreateMockTaskWithPayload(domain.RoomQuiz)
		require.NoError(t, runner.Submit(context.Background(), task))

		pendingTasks, err := store.GetPendingTasks(context.Background())
		require.NoError(t, err)
		assert.Contains(t, extractTaskIDs(pendingTasks), task.ID())
	})

	t.Run("queue full marks the task failed", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		config := DefaultTaskRunnerConfig()
		config.QueueSize = 1
		runner := NewTaskRunner(store, config, logger)

		first := CreateMockTaskWithPayload(domain.RoomQuiz)
		require.NoError(t, runner.Submit(context.Background(), first))

		second := CreateMockTaskWithPayload(domain.RoomMemory)
		err := runner.Submit(context.Background(), second)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Contains(t, err.Error(), "queue is full")

		status, msg := store.StatusOf(second.ID())
		assert.Equal(t, TaskStatusFailed, status)
		assert.Contains(t, msg, "queue is full")

		pending, err := store.GetPendingTasks(context.Background())
		require.NoError(t, err)
		assert.NotContains(t, extractTaskIDs(pending), second.ID())
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		store.SaveFn = func(ctx context.Context, task Task) error {
			return errors.New("mock store error")
		}
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), logger)

		err := runner.Submit(context.Background(), CreateMockTaskWithPayload(domain.RoomTest))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save task")
	})
}

func TestTaskRunner_Start_and_Processing(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	config := DefaultTaskRunnerConfig()
	config.WorkerCount = 2
	config.QueueSize = 10
	runner := NewTaskRunner(store, config, discardLogger())

	var mu sync.Mutex
	finished := make(map[string]int)
	runner.SetCompletionHook(func(ctx context.Context, taskType string, err error) {
		mu.Lock()
		defer mu.Unlock()
		finished[taskType]++
	})

	taskIDs := make([]uuid.UUID, 0, 3)
	for i := 0; i < 3; i++ {
		task := CreateMockTaskWithPayload(domain.RoomQuiz)
		taskIDs = append(taskIDs, task.ID())
		require.NoError(t, runner.Submit(context.Background(), task))
	}

	require.NoError(t, runner.Start())
	defer runner.Stop()

	for _, id := range taskIDs {
		waitForStatus(t, store, id, TaskStatusCompleted)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return finished["mock_task"] == 3
	}, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, finished["mock_task"], "each submitted task runs once")
}

func TestTaskRunner_TaskFailure(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), discardLogger())

	errorChan := make(chan error, 1)
	runner.SetCompletionHook(func(ctx context.Context, taskType string, err error) {
		errorChan <- err
	})

	task := CreateMockTaskWithPayload(domain.RoomMemory)
	task.ExecuteFn = func(ctx context.Context) error {
		return errors.New("intentional test failure")
	}
	require.NoError(t, runner.Submit(context.Background(), task))

	require.NoError(t, runner.Start())
	defer runner.Stop()

	select {
	case err := <-errorChan:
		assert.EqualError(t, err, "intentional test failure")
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for completion hook")
	}

	msg := waitForStatus(t, store, task.ID(), TaskStatusFailed)
	assert.Equal(t, "intentional test failure", msg)
}

func TestTaskRunner_PanicBecomesFailure(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), discardLogger())

	hookErr := make(chan error, 1)
	runner.SetCompletionHook(func(ctx context.Context, taskType string, err error) {
		hookErr <- err
	})

	task := CreateMockTaskWithPayload(domain.RoomTest)
	task.ExecuteFn = func(ctx context.Context) error {
		panic("boom")
	}
	require.NoError(t, runner.Submit(context.Background(), task))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	select {
	case err := <-hookErr:
		assert.ErrorIs(t, err, ErrTaskPanicked)
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for completion hook")
	}
	waitForStatus(t, store, task.ID(), TaskStatusFailed)
}

func TestTaskRunner_SpansEachExecution(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), discardLogger())
	runner.SetTracer(provider.Tracer("test"))

	task := CreateMockTaskWithPayload(domain.RoomQuiz)
	require.NoError(t, runner.Submit(context.Background(), task))
	require.NoError(t, runner.Start())
	waitForStatus(t, store, task.ID(), TaskStatusCompleted)
	runner.Stop()

	require.Eventually(t, func() bool { return len(recorder.Ended()) >= 1 }, time.Second, 10*time.Millisecond)
	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "task.mock_task", recorder.Ended()[0].Name())
}

func TestTaskRunner_Recover(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	ctx := context.Background()

	pendingTask := CreateMockTaskWithPayload(domain.RoomQuiz)
	processingTask := CreateMockTaskWithPayload(domain.RoomMemory)
	require.NoError(t, store.SaveTask(ctx, pendingTask))
	require.NoError(t, store.SaveTask(ctx, processingTask))
	require.NoError(t, store.UpdateTaskStatus(ctx, processingTask.ID(), TaskStatusProcessing, ""))

	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), discardLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	waitForStatus(t, store, pendingTask.ID(), TaskStatusCompleted)
	waitForStatus(t, store, processingTask.ID(), TaskStatusCompleted)
}

func TestTaskRunner_StuckTasks(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	config := DefaultTaskRunnerConfig()
	config.StuckTaskAge = 15 * time.Minute
	config.StuckTaskCheckInterval = 50 * time.Millisecond
	runner := NewTaskRunner(store, config, discardLogger())

	require.NoError(t, runner.Start())
	defer runner.Stop()

	// Saved after Start so only the monitor can pick it up.
	executed := make(chan uuid.UUID, 1)
	stuckTask := CreateMockTaskWithPayload(domain.RoomTest)
	stuckTask.ExecuteFn = func(ctx context.Context) error {
		executed <- stuckTask.ID()
		return nil
	}
	require.NoError(t, store.SaveTask(context.Background(), stuckTask))
	store.setStatus(stuckTask.ID(), TaskStatusProcessing, time.Now().Add(-30*time.Minute))

	select {
	case id := <-executed:
		assert.Equal(t, stuckTask.ID(), id)
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for stuck task to be executed")
	}
}

func TestTaskRunner_StopKeepsQueuedTasksPending(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), discardLogger())

	task := CreateMockTaskWithPayload(domain.RoomQuiz)
	require.NoError(t, runner.Submit(context.Background(), task))
	runner.Stop()

	status, _ := store.StatusOf(task.ID())
	assert.Equal(t, TaskStatusPending, status)
	assert.ErrorIs(t, runner.Submit(context.Background(), CreateMockTaskWithPayload(domain.RoomQuiz)), ErrQueueClosed)
}

func TestTaskRunner_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(NewMockTaskStore(), TaskRunnerConfig{}, discardLogger())
	require.NoError(t, runner.Start())

	runner.Stop()
	assert.NotPanics(t, runner.Stop)
}

func TestTaskRunner_SubmitBeforeStartRunsOnce(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), discardLogger())

	var mu sync.Mutex
	executions := 0
	task := CreateMockTaskWithPayload(domain.RoomQuiz)
	task.ExecuteFn = func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		executions++
		return nil
	}
	require.NoError(t, runner.Submit(context.Background(), task))

	require.NoError(t, runner.Start())
	waitForStatus(t, store, task.ID(), TaskStatusCompleted)
	time.Sleep(200 * time.Millisecond)
	runner.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, executions)
}
