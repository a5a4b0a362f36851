package llm

import (
	"context"
	"fmt"

	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/generation"
)

// NewProviders builds the primary and secondary providers. Demo mode always
// yields the demo provider alone, regardless of the configured names. The
// secondary is nil when none is configured.
func NewProviders(
	ctx context.Context,
	mode domain.BackendMode,
	cfg config.LLMConfig,
) (primary, secondary generation.Provider, err error) {
	if mode.IsDemo() {
		return NewDemo(), nil, nil
	}

	primary, err = NewProvider(ctx, cfg.Primary, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing primary provider: %w", err)
	}
	if cfg.Secondary == "" {
		return primary, nil, nil
	}
	secondary, err = NewProvider(ctx, cfg.Secondary, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing secondary provider: %w", err)
	}
	return primary, secondary, nil
}

// NewProvider creates the named provider from cfg.
func NewProvider(ctx context.Context, name string, cfg config.LLMConfig) (generation.Provider, error) {
	switch name {
	case "gemini":
		return NewGemini(ctx, GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	case "openai":
		return NewOpenAI(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL})
	case "anthropic":
		return NewAnthropic(AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			BaseURL: cfg.AnthropicBaseURL,
		})
	case "demo":
		return NewDemo(), nil
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", generation.ErrInvalidConfig, name)
	}
}
