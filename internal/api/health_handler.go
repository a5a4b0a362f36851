package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyrooms-api/internal/api/shared"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// CounterSource reports cumulative counter values by instrument name.
type CounterSource interface {
	CounterTotals(ctx context.Context) (map[string]int64, error)
}

// HealthHandler answers liveness checks.
type HealthHandler struct {
	mode       domain.BackendMode
	generation string
	counters   CounterSource
	logger     *slog.Logger
}

// NewHealthHandler creates a HealthHandler. generation describes the
// provider chain and counters may be nil.
func NewHealthHandler(
	mode domain.BackendMode,
	generation string,
	counters CounterSource,
	logger *slog.Logger,
) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		mode:       mode,
		generation: generation,
		counters:   counters,
		logger:     logger.With("component", "health_handler"),
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "ok",
		BackendMode: string(h.mode),
		Generation:  h.generation,
	}

	if h.counters != nil {
		totals, err := h.counters.CounterTotals(r.Context())
		if err != nil {
			h.logger.Warn("failed to collect counter totals", "error", err)
		} else {
			resp.Counters = totals
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
