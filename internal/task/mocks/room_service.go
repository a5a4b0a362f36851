package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/prompt"
)

// RoomService is a mock implementation of task.RoomService
type RoomService struct {
	LessonForGenerationFn func(ctx context.Context, lessonID uuid.UUID) (*domain.Lesson, *domain.OverviewContent, error)
	StoreGeneratedRoomFn  func(ctx context.Context, lessonID uuid.UUID, content *domain.RoomContent) error
	ReleaseRoomFn         func(ctx context.Context, lessonID uuid.UUID, room domain.RoomType, claimedAt time.Time) error

	mu       sync.Mutex
	Stored   []*domain.RoomContent
	Released []domain.RoomType
}

// LessonForGeneration implements task.RoomService
func (m *RoomService) LessonForGeneration(
	ctx context.Context,
	lessonID uuid.UUID,
) (*domain.Lesson, *domain.OverviewContent, error) {
	if m.LessonForGenerationFn != nil {
		return m.LessonForGenerationFn(ctx, lessonID)
	}
	return nil, nil, nil
}

// StoreGeneratedRoom implements task.RoomService
func (m *RoomService) StoreGeneratedRoom(
	ctx context.Context,
	lessonID uuid.UUID,
	content *domain.RoomContent,
) error {
	m.mu.Lock()
	m.Stored = append(m.Stored, content)
	m.mu.Unlock()
	if m.StoreGeneratedRoomFn != nil {
		return m.StoreGeneratedRoomFn(ctx, lessonID, content)
	}
	return nil
}

// ReleaseRoom implements task.RoomService
func (m *RoomService) ReleaseRoom(
	ctx context.Context,
	lessonID uuid.UUID,
	room domain.RoomType,
	claimedAt time.Time,
) error {
	m.mu.Lock()
	m.Released = append(m.Released, room)
	m.mu.Unlock()
	if m.ReleaseRoomFn != nil {
		return m.ReleaseRoomFn(ctx, lessonID, room, claimedAt)
	}
	return nil
}

// Generator is a mock implementation of task.Generator
type Generator struct {
	GenerateFn func(ctx context.Context, p prompt.Prompt) (json.RawMessage, error)

	mu      sync.Mutex
	Prompts []prompt.Prompt
}

// Generate implements task.Generator
func (m *Generator) Generate(ctx context.Context, p prompt.Prompt) (json.RawMessage, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, p)
	m.mu.Unlock()
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, p)
	}
	return nil, nil
}
