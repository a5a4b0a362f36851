package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// TypeRoomGeneration asks for one room of one lesson to be generated.
const TypeRoomGeneration = "room_generation"

// ErrWrongEventType is returned when a typed accessor is used on an event
// of another type.
var ErrWrongEventType = errors.New("wrong event type")

// RoomGenerationPayload is the wire form of a TypeRoomGeneration payload.
// Room may be any name ParseRoomType accepts.
// ClaimedAt identifies the generation claim the request was made under.
type RoomGenerationPayload struct {
	LessonID  string    `json:"lesson_id"`
	Room      string    `json:"room"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// RoomGenerationRequest is a decoded TypeRoomGeneration event.
type RoomGenerationRequest struct {
	LessonID  uuid.UUID
	Room      domain.RoomType
	ClaimedAt time.Time
}

// TaskRequestEvent asks whoever is listening to start a background task.
// The payload stays raw JSON so this package knows nothing about tasks.
type TaskRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTaskRequestEvent marshals payload into a new event of eventType.
func NewTaskRequestEvent(eventType string, payload any) (*TaskRequestEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewRoomGenerationEvent requests generation of room for lessonID under
// the claim taken at claimedAt.
func NewRoomGenerationEvent(lessonID uuid.UUID, room string, claimedAt time.Time) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TypeRoomGeneration, RoomGenerationPayload{
		LessonID:  lessonID.String(),
		Room:      room,
		ClaimedAt: claimedAt,
	})
}

// UnmarshalPayload decodes the payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// RoomRequest decodes a room generation event, canonicalizing the room.
func (e *TaskRequestEvent) RoomRequest() (RoomGenerationRequest, error) {
	if e.Type != TypeRoomGeneration {
		return RoomGenerationRequest{}, fmt.Errorf("%w: %q", ErrWrongEventType, e.Type)
	}

	var p RoomGenerationPayload
	if err := e.UnmarshalPayload(&p); err != nil {
		return RoomGenerationRequest{}, fmt.Errorf("decode room generation payload: %w", err)
	}
	lessonID, err := uuid.Parse(p.LessonID)
	if err != nil {
		return RoomGenerationRequest{}, fmt.Errorf("invalid lesson id %q: %w", p.LessonID, err)
	}
	room, err := domain.ParseRoomType(p.Room)
	if err != nil {
		return RoomGenerationRequest{}, err
	}
	return RoomGenerationRequest{LessonID: lessonID, Room: room, ClaimedAt: p.ClaimedAt}, nil
}

// EventHandler reacts to emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *TaskRequestEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes events. An error means at least one handler did
// not accept the event, so the caller must not assume the work is queued.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
