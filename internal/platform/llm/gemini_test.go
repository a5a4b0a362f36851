package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/studyrooms-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewGemini(t *testing.T) {
	t.Parallel()

	_, err := NewGemini(context.Background(), GeminiConfig{Model: "gemini-flash"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewGemini(context.Background(), GeminiConfig{APIKey: "key"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	g, err := NewGemini(context.Background(), GeminiConfig{APIKey: "key", Model: "gemini-flash"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", g.Model())
	assert.Equal(t, "gemini", g.Name())
}

func TestResolveModel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-1.5-pro", resolveModel("gemini-1.5-pro", geminiModels))
	assert.Equal(t, "claude-haiku-4-5", resolveModel("claude-haiku", anthropicModels))
}

func TestMapGeminiError(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, mapGeminiError(&genai.APIError{Code: 503, Message: "overloaded"}), generation.ErrTransientFailure)
	assert.ErrorIs(t, mapGeminiError(&genai.APIError{Code: 429, Message: "quota"}), generation.ErrTransientFailure)
	assert.ErrorIs(t, mapGeminiError(&genai.APIError{Code: 403, Message: "bad key"}), generation.ErrInvalidConfig)

	plain := errors.New("dial tcp: connection refused")
	err := mapGeminiError(plain)
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, generation.ErrTransientFailure)
}
