package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ProgressRecord
var (
	ErrInvalidScore     = errors.New("score must be between 0 and max score")
	ErrInvalidTimeSpent = errors.New("time spent cannot be negative")
)

// ProgressRecord is one attempt a learner made at a room.
type ProgressRecord struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	LessonID         uuid.UUID `json:"lesson_id"`
	Room             RoomType  `json:"room_type"`
	Score            int       `json:"score"`
	MaxScore         int       `json:"max_score"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	Completed        bool      `json:"completed"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// NewProgressRecord creates a validated progress record.
func NewProgressRecord(
	userID, lessonID uuid.UUID,
	room RoomType,
	score, maxScore, timeSpentSeconds int,
	completed bool,
) (*ProgressRecord, error) {
	rec := &ProgressRecord{
		ID:               uuid.New(),
		UserID:           userID,
		LessonID:         lessonID,
		Room:             room,
		Score:            score,
		MaxScore:         maxScore,
		TimeSpentSeconds: timeSpentSeconds,
		Completed:        completed,
		RecordedAt:       time.Now().UTC(),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate checks if the ProgressRecord has valid data.
func (p *ProgressRecord) Validate() error {
	if p.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrInvalidID)
	}
	if p.LessonID == uuid.Nil {
		return NewValidationError("lesson_id", "is required", ErrInvalidID)
	}
	if _, err := ParseRoomType(string(p.Room)); err != nil {
		return NewValidationError("room_type", "is not a known room", ErrInvalidRoomType)
	}
	if p.MaxScore < 0 || p.Score < 0 || p.Score > p.MaxScore {
		return NewValidationError("score", "is out of range", ErrInvalidScore)
	}
	if p.TimeSpentSeconds < 0 {
		return NewValidationError("time_spent_seconds", "is negative", ErrInvalidTimeSpent)
	}
	return nil
}

// CompletesLesson reports whether recording p finishes the lesson.
func (p *ProgressRecord) CompletesLesson() bool {
	return p.Completed && p.Room == RoomTest
}
