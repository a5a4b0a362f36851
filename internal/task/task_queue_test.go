package task

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueueFIFO(t *testing.T) {
	q := NewTaskQueue(3, discardLogger())
	first := CreateMockTaskWithPayload(domain.RoomQuiz)
	second := CreateMockTaskWithPayload(domain.RoomTest)

	require.NoError(t, q.Enqueue(first))
	require.NoError(t, q.Enqueue(second))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 3, q.Cap())

	assert.Same(t, first, (<-q.Tasks()).(*MockTask))
	assert.Same(t, second, (<-q.Tasks()).(*MockTask))
	assert.Zero(t, q.Len())
}

func TestTaskQueueFullDoesNotBlock(t *testing.T) {
	q := NewTaskQueue(1, nil)
	require.NoError(t, q.Enqueue(NewMockTask(uuid.New(), TaskTypeRoomGeneration, nil)))

	err := q.Enqueue(NewMockTask(uuid.New(), TaskTypeRoomGeneration, nil))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.ErrorContains(t, err, "capacity 1")
	assert.Equal(t, 1, q.Len())
}

func TestTaskQueueNegativeCapacity(t *testing.T) {
	q := NewTaskQueue(-5, nil)
	assert.Zero(t, q.Cap())
	assert.ErrorIs(t, q.Enqueue(NewMockTask(uuid.New(), TaskTypeRoomGeneration, nil)), ErrQueueFull)
}

func TestTaskQueueClose(t *testing.T) {
	q := NewTaskQueue(2, discardLogger())
	queued := NewMockTask(uuid.New(), TaskTypeRoomGeneration, nil)
	require.NoError(t, q.Enqueue(queued))

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(NewMockTask(uuid.New(), TaskTypeRoomGeneration, nil)), ErrQueueClosed)

	// Tasks queued before Close are still delivered, then the channel ends.
	got, ok := <-q.Tasks()
	require.True(t, ok)
	assert.Equal(t, queued.ID(), got.ID())
	_, ok = <-q.Tasks()
	assert.False(t, ok)
}

func TestTaskQueueConcurrentEnqueue(t *testing.T) {
	const producers, perProducer = 8, 25
	q := NewTaskQueue(producers*perProducer, discardLogger())

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				assert.NoError(t, q.Enqueue(NewMockTask(uuid.New(), TaskTypeRoomGeneration, nil)))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len())
}

func TestTaskStatusTerminal(t *testing.T) {
	assert.False(t, TaskStatusPending.Terminal())
	assert.False(t, TaskStatusProcessing.Terminal())
	assert.True(t, TaskStatusCompleted.Terminal())
	assert.True(t, TaskStatusFailed.Terminal())
}
