package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/api/shared"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// lessonTarget is what a lesson-scoped route acts on.
type lessonTarget struct {
	UserID   uuid.UUID
	LessonID uuid.UUID
	Room     domain.RoomType
}

// targetParts selects which parts of a lessonTarget a route needs.
type targetParts uint8

const (
	withLesson targetParts = 1 << iota
	withRoom
)

// resolveTarget reads the caller, {id} and optionally {room} from r. On
// failure it writes the error response and returns false.
func resolveTarget(w http.ResponseWriter, r *http.Request, log *slog.Logger, parts targetParts) (lessonTarget, bool) {
	var t lessonTarget

	userID, ok := userIDFrom(r)
	if !ok {
		log.WarnContext(r.Context(), "request reached a protected handler without a user")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return t, false
	}
	t.UserID = userID

	if parts&withLesson != 0 {
		id, err := pathUUID(r, "id")
		if err != nil {
			HandleAPIError(w, r, err, "")
			return t, false
		}
		t.LessonID = id
	}

	if parts&withRoom != 0 {
		room, err := domain.ParseRoomType(chi.URLParam(r, "room"))
		if err != nil {
			HandleAPIError(w, r, err, "")
			return t, false
		}
		t.Room = room
	}

	return t, true
}

func userIDFrom(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// decodeAndValidate decodes the JSON body into v and validates it. It writes
// a 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// queryInt reads a non-negative integer query parameter, returning def when
// the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer", domain.ErrInvalidFormat)
	}
	return n, nil
}
