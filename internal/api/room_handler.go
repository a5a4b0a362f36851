package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyrooms-api/internal/api/shared"
	"github.com/phrazzld/studyrooms-api/internal/service"
)

// RoomHandler serves room content and records attempts at rooms.
type RoomHandler struct {
	rooms    service.RoomService
	progress service.ProgressService
	logger   *slog.Logger
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(
	rooms service.RoomService,
	progress service.ProgressService,
	logger *slog.Logger,
) *RoomHandler {
	if rooms == nil {
		panic("rooms service cannot be nil")
	}
	if progress == nil {
		panic("progress service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomHandler{
		rooms:    rooms,
		progress: progress,
		logger:   logger.With("component", "room_handler"),
	}
}

// GetRoom handles GET /lessons/{id}/rooms/{room}. It always answers with
// content: rooms that are not generated yet are served as placeholders
// while generation runs in the background.
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	t, ok := resolveTarget(w, r, h.logger, withLesson|withRoom)
	if !ok {
		return
	}

	view, err := h.rooms.GetRoomContent(r.Context(), t.UserID, t.LessonID, t.Room)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get room")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, roomViewToResponse(view))
}

// RecordProgress handles POST /lessons/{id}/rooms/{room}/progress.
func (h *RoomHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	t, ok := resolveTarget(w, r, h.logger, withLesson|withRoom)
	if !ok {
		return
	}

	var req RecordProgressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	record, err := h.progress.RecordProgress(r.Context(), t.UserID, t.LessonID, service.ProgressInput{
		Room:             t.Room,
		Score:            req.Score,
		MaxScore:         req.MaxScore,
		TimeSpentSeconds: req.TimeSpentSeconds,
		Completed:        req.Completed,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, progressToResponse(record))
}
