package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the subject-matter class a lesson is filed under. It decides
// which overview schema the lesson is generated with.
type Category string

// Known categories, in classification priority order.
const (
	CategoryHistoricalPeriod Category = "historical_period"
	CategoryConstitution     Category = "constitution"
	CategoryGeography        Category = "geography"
	CategoryScience          Category = "science"
	CategoryGeneral          Category = "general"
)

// Categories returns every known category in classification priority order.
func Categories() []Category {
	return []Category{
		CategoryHistoricalPeriod,
		CategoryConstitution,
		CategoryGeography,
		CategoryScience,
		CategoryGeneral,
	}
}

// ParseCategory returns the category named by s. Unknown values report false.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// ExamFocus is the competitive exam a lesson is framed for.
type ExamFocus string

// Known exam focuses.
const (
	ExamUPSC     ExamFocus = "upsc"
	ExamSSC      ExamFocus = "ssc"
	ExamBanking  ExamFocus = "banking"
	ExamNEET     ExamFocus = "neet"
	ExamJEE      ExamFocus = "jee"
	ExamStatePCS ExamFocus = "state_pcs"
)

// DefaultExamFocus is used when nothing in the content points elsewhere.
const DefaultExamFocus = ExamUPSC

// ExamFocuses returns every known exam focus.
func ExamFocuses() []ExamFocus {
	return []ExamFocus{ExamUPSC, ExamSSC, ExamBanking, ExamNEET, ExamJEE, ExamStatePCS}
}

// ParseExamFocus returns the exam focus named by s. Unknown values report false.
func ParseExamFocus(s string) (ExamFocus, bool) {
	e := ExamFocus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ExamFocuses() {
		if e == known {
			return e, true
		}
	}
	return "", false
}

// Difficulty grades both lessons and individual items.
type Difficulty string

// Difficulty levels.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// LessonStatus represents the lifecycle state of a lesson.
type LessonStatus string

// Possible lesson status values
const (
	LessonStatusActive    LessonStatus = "active"
	LessonStatusCompleted LessonStatus = "completed"
	LessonStatusArchived  LessonStatus = "archived"
)

// SourceKind records how the learner supplied the lesson material.
type SourceKind string

// Source kinds.
const (
	SourceKindText  SourceKind = "text"
	SourceKindURL   SourceKind = "url"
	SourceKindTopic SourceKind = "topic"
)

// Common validation errors for Lesson
var (
	ErrEmptyLessonID     = errors.New("lesson ID cannot be empty")
	ErrEmptyLessonUserID = errors.New("lesson user ID cannot be empty")
	ErrEmptyLessonTitle  = errors.New("lesson title cannot be empty")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidExamFocus  = errors.New("invalid exam focus")
)

// Lesson is the unit of study a learner creates from their own material.
// The overview room is generated when the lesson is created; the other
// rooms are generated lazily the first time they are opened.
type Lesson struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	SourceURL  string       `json:"source_url,omitempty"`
	SourceKind SourceKind   `json:"source_kind"`
	Subject    string       `json:"subject,omitempty"`
	Category   Category     `json:"category"`
	ExamFocus  ExamFocus    `json:"exam_focus"`
	Difficulty Difficulty   `json:"difficulty"`
	Status     LessonStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewLesson creates an active lesson owned by userID.
// Returns an error if validation fails.
func NewLesson(
	userID uuid.UUID,
	title string,
	content string,
	kind SourceKind,
	category Category,
	exam ExamFocus,
) (*Lesson, error) {
	now := time.Now().UTC()
	lesson := &Lesson{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      strings.TrimSpace(title),
		Content:    content,
		SourceKind: kind,
		Category:   category,
		ExamFocus:  exam,
		Difficulty: DifficultyIntermediate,
		Status:     LessonStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := lesson.Validate(); err != nil {
		return nil, err
	}

	return lesson, nil
}

// Validate checks if the Lesson has valid data.
func (l *Lesson) Validate() error {
	if l.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrEmptyLessonID)
	}
	if l.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrEmptyLessonUserID)
	}
	if strings.TrimSpace(l.Title) == "" {
		return NewValidationError("title", "is required", ErrEmptyLessonTitle)
	}
	if strings.TrimSpace(l.Content) == "" {
		return NewValidationError("content", "is required", ErrEmptyContent)
	}
	if _, ok := ParseCategory(string(l.Category)); !ok {
		return NewValidationError("category", "is not a known category", ErrInvalidCategory)
	}
	if _, ok := ParseExamFocus(string(l.ExamFocus)); !ok {
		return NewValidationError("exam_focus", "is not a known exam", ErrInvalidExamFocus)
	}
	if !isValidLessonStatus(l.Status) {
		return NewValidationError("status", "is not a known status", ErrInvalidLessonStatus)
	}
	return nil
}

// Complete marks the lesson as completed. Archived lessons stay archived.
func (l *Lesson) Complete() bool {
	if l.Status != LessonStatusActive {
		return false
	}
	l.Status = LessonStatusCompleted
	l.UpdatedAt = time.Now().UTC()
	return true
}

// Archive moves the lesson out of the learner's active list.
func (l *Lesson) Archive() {
	l.Status = LessonStatusArchived
	l.UpdatedAt = time.Now().UTC()
}

// IsOwnedBy reports whether userID owns the lesson.
func (l *Lesson) IsOwnedBy(userID uuid.UUID) bool {
	return l.UserID == userID
}

func isValidLessonStatus(status LessonStatus) bool {
	switch status {
	case LessonStatusActive, LessonStatusCompleted, LessonStatusArchived:
		return true
	default:
		return false
	}
}

// TitleFromContent derives a short display title from raw lesson material:
// the first non-empty line, cut to at most 80 characters on a word boundary.
func TitleFromContent(content string) string {
	const maxTitle = 80
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) <= maxTitle {
			return line
		}
		cut := string(runes[:maxTitle])
		if i := strings.LastIndex(cut, " "); i > maxTitle/2 {
			cut = cut[:i]
		}
		return strings.TrimSpace(cut) + "..."
	}
	return ""
}
