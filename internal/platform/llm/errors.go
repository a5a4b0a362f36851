package llm

import (
	"fmt"
	"net/http"

	"github.com/phrazzld/studyrooms-api/internal/generation"
)

// mapStatus classifies an HTTP status returned by a vendor SDK.
func mapStatus(provider string, status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: %s returned %d: %v", generation.ErrTransientFailure, provider, status, err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s rejected credentials (%d): %v", generation.ErrInvalidConfig, provider, status, err)
	default:
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
}

func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
