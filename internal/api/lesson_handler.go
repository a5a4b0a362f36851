package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyrooms-api/internal/api/shared"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/service"
)

// LessonHandler handles lesson-related API requests.
type LessonHandler struct {
	lessons service.LessonService
	logger  *slog.Logger
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(lessons service.LessonService, logger *slog.Logger) *LessonHandler {
	if lessons == nil {
		panic("lessons service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LessonHandler{
		lessons: lessons,
		logger:  logger.With("component", "lesson_handler"),
	}
}

// CreateLesson handles POST /lessons. It resolves and classifies the
// submitted material and returns the lesson with its overview. A failed
// overview generation still yields 201 with a placeholder overview.
func (h *LessonHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	t, ok := resolveTarget(w, r, log, 0)
	if !ok {
		return
	}

	var req CreateLessonRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in := service.CreateLessonInput{RawContent: req.Content, Subject: req.Subject}
	if req.Category != nil {
		c, _ := domain.ParseCategory(*req.Category)
		in.Category = &c
	}
	if req.ExamFocus != nil {
		e, _ := domain.ParseExamFocus(*req.ExamFocus)
		in.ExamFocus = &e
	}

	created, err := h.lessons.CreateLesson(r.Context(), t.UserID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create lesson")
		return
	}

	log.Debug("lesson created via API",
		slog.String("lesson_id", created.Lesson.ID.String()),
		slog.String("overview_state", string(created.OverviewState)))

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateLessonResponse{
		Lesson:        lessonToResponse(created.Lesson),
		Overview:      created.Overview,
		OverviewState: string(created.OverviewState),
	})
}

// ListLessons handles GET /lessons?limit=&offset=.
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	t, ok := resolveTarget(w, r, h.logger, 0)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", service.DefaultPageSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}

	lessons, err := h.lessons.ListLessons(r.Context(), t.UserID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list lessons")
		return
	}

	resp := ListLessonsResponse{
		Lessons: make([]LessonResponse, 0, len(lessons)),
		Limit:   limit,
		Offset:  offset,
	}
	for _, l := range lessons {
		resp.Lessons = append(resp.Lessons, lessonToResponse(l))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetLesson handles GET /lessons/{id}.
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	t, ok := resolveTarget(w, r, h.logger, withLesson)
	if !ok {
		return
	}

	lesson, err := h.lessons.GetLesson(r.Context(), t.UserID, t.LessonID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get lesson")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, lessonToResponse(lesson))
}

// ArchiveLesson handles POST /lessons/{id}/archive.
func (h *LessonHandler) ArchiveLesson(w http.ResponseWriter, r *http.Request) {
	t, ok := resolveTarget(w, r, h.logger, withLesson)
	if !ok {
		return
	}

	lesson, err := h.lessons.ArchiveLesson(r.Context(), t.UserID, t.LessonID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to archive lesson")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, lessonToResponse(lesson))
}
