package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/service"
)

// CreateLessonRequest defines the payload for creating a lesson. Content
// may be pasted notes, a topic or an http(s) URL.
type CreateLessonRequest struct {
	Content   string  `json:"content"              validate:"required,max=100000"`
	Category  *string `json:"category,omitempty"   validate:"omitempty,oneof=historical_period constitution geography science general"`
	ExamFocus *string `json:"exam_focus,omitempty" validate:"omitempty,oneof=upsc ssc banking neet jee state_pcs"`
	Subject   string  `json:"subject,omitempty"    validate:"max=200"`
}

// RecordProgressRequest defines the payload for recording a room attempt.
type RecordProgressRequest struct {
	Score            int  `json:"score"              validate:"gte=0,ltefield=MaxScore"`
	MaxScore         int  `json:"max_score"          validate:"gte=0"`
	TimeSpentSeconds int  `json:"time_spent_seconds" validate:"gte=0"`
	Completed        bool `json:"completed"`
}

// LessonResponse is the API representation of a lesson. The raw material
// is not echoed back.
type LessonResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	SourceKind string    `json:"source_kind"`
	SourceURL  string    `json:"source_url,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Category   string    `json:"category"`
	ExamFocus  string    `json:"exam_focus"`
	Difficulty string    `json:"difficulty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateLessonResponse is returned by CreateLesson.
type CreateLessonResponse struct {
	Lesson        LessonResponse          `json:"lesson"`
	Overview      *domain.OverviewContent `json:"overview"`
	OverviewState string                  `json:"overview_state"`
}

// ListLessonsResponse is one page of lessons.
type ListLessonsResponse struct {
	Lessons []LessonResponse `json:"lessons"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// RoomResponse is the assembled payload of one room.
type RoomResponse struct {
	Mission  LessonResponse     `json:"mission"`
	Room     string             `json:"room"`
	State    string             `json:"state"`
	Content  domain.RoomContent `json:"content"`
	Progress []ProgressResponse `json:"progress"`
}

// ProgressResponse is one recorded attempt.
type ProgressResponse struct {
	ID               uuid.UUID `json:"id"`
	Room             string    `json:"room"`
	Score            int       `json:"score"`
	MaxScore         int       `json:"max_score"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	Completed        bool      `json:"completed"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// HealthResponse reports liveness and the configured backend.
type HealthResponse struct {
	Status      string           `json:"status"`
	BackendMode string           `json:"backend_mode"`
	Generation  string           `json:"generation,omitempty"`
	Counters    map[string]int64 `json:"counters,omitempty"`
}

func lessonToResponse(l *domain.Lesson) LessonResponse {
	return LessonResponse{
		ID:         l.ID,
		Title:      l.Title,
		SourceKind: string(l.SourceKind),
		SourceURL:  l.SourceURL,
		Subject:    l.Subject,
		Category:   string(l.Category),
		ExamFocus:  string(l.ExamFocus),
		Difficulty: string(l.Difficulty),
		Status:     string(l.Status),
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func progressToResponse(p *domain.ProgressRecord) ProgressResponse {
	return ProgressResponse{
		ID:               p.ID,
		Room:             string(p.Room),
		Score:            p.Score,
		MaxScore:         p.MaxScore,
		TimeSpentSeconds: p.TimeSpentSeconds,
		Completed:        p.Completed,
		RecordedAt:       p.RecordedAt,
	}
}

func roomViewToResponse(v *service.RoomView) RoomResponse {
	progress := make([]ProgressResponse, 0, len(v.Progress))
	for _, p := range v.Progress {
		progress = append(progress, progressToResponse(p))
	}
	return RoomResponse{
		Mission:  lessonToResponse(v.Mission),
		Room:     string(v.Room),
		State:    string(v.State),
		Content:  v.Content,
		Progress: progress,
	}
}
