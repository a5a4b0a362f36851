package llm

import (
	"context"
	"testing"

	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviders_DemoMode(t *testing.T) {
	t.Parallel()

	primary, secondary, err := NewProviders(context.Background(), domain.BackendModeDemo,
		config.LLMConfig{Primary: "gemini", Secondary: "openai"})
	require.NoError(t, err)
	assert.Equal(t, "demo", primary.Name())
	assert.Nil(t, secondary)
}

func TestNewProviders_Live(t *testing.T) {
	t.Parallel()

	primary, secondary, err := NewProviders(context.Background(), domain.BackendModeLive, config.LLMConfig{
		Primary:         "openai",
		Secondary:       "anthropic",
		OpenAIAPIKey:    "k1",
		OpenAIModel:     "gpt-4o-mini",
		AnthropicAPIKey: "k2",
		AnthropicModel:  "claude-haiku",
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", primary.Name())
	assert.Equal(t, "anthropic", secondary.Name())
}

func TestNewProviders_LiveErrors(t *testing.T) {
	t.Parallel()

	_, _, err := NewProviders(context.Background(), domain.BackendModeLive,
		config.LLMConfig{Primary: "openai", OpenAIModel: "gpt-4o-mini"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewProvider(context.Background(), "llama", config.LLMConfig{})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
