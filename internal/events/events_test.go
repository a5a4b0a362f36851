package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRequestEvent(t *testing.T) {
	payload := map[string]any{"lesson_id": "abc", "attempt": 2}

	event, err := NewTaskRequestEvent("custom", payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "custom", event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)
	assert.Equal(t, time.UTC, event.CreatedAt.Location())
	assert.JSONEq(t, `{"lesson_id":"abc","attempt":2}`, string(event.Payload))
}

func TestNewTaskRequestEventRejectsUnencodablePayload(t *testing.T) {
	_, err := NewTaskRequestEvent("custom", make(chan int))
	assert.ErrorContains(t, err, "encode custom payload")
}

func TestRoomRequest(t *testing.T) {
	lessonID := uuid.New()
	claimedAt := time.Date(2026, 3, 4, 5, 6, 7, 891000, time.UTC)

	tests := []struct {
		name string
		room string
		want domain.RoomType
	}{
		{"canonical", "quiz", domain.RoomQuiz},
		{"flashcards alias", "flashcards", domain.RoomMemory},
		{"overview alias", "overview", domain.RoomClarity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := NewRoomGenerationEvent(lessonID, tt.room, claimedAt)
			require.NoError(t, err)

			req, err := event.RoomRequest()
			require.NoError(t, err)
			assert.Equal(t, lessonID, req.LessonID)
			assert.Equal(t, tt.want, req.Room)
			assert.True(t, claimedAt.Equal(req.ClaimedAt), "claim token survives encoding")
		})
	}
}

func TestRoomRequestErrors(t *testing.T) {
	t.Run("wrong type", func(t *testing.T) {
		event, err := NewTaskRequestEvent("other", struct{}{})
		require.NoError(t, err)
		_, err = event.RoomRequest()
		assert.ErrorIs(t, err, ErrWrongEventType)
	})

	t.Run("malformed payload", func(t *testing.T) {
		event := &TaskRequestEvent{Type: TypeRoomGeneration, Payload: json.RawMessage(`[1,2]`)}
		_, err := event.RoomRequest()
		assert.ErrorContains(t, err, "decode room generation payload")
	})

	t.Run("bad lesson id", func(t *testing.T) {
		event, err := NewTaskRequestEvent(TypeRoomGeneration, RoomGenerationPayload{LessonID: "nope", Room: "quiz"})
		require.NoError(t, err)
		_, err = event.RoomRequest()
		assert.ErrorContains(t, err, "invalid lesson id")
	})

	t.Run("unknown room", func(t *testing.T) {
		event, err := NewRoomGenerationEvent(uuid.New(), "lounge", time.Now())
		require.NoError(t, err)
		_, err = event.RoomRequest()
		assert.ErrorIs(t, err, domain.ErrInvalidRoomType)
	})
}
