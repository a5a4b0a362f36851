package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studyrooms-api/internal/prompt"
)

// DefaultTimeout bounds a single provider call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// DefaultMaxTokens is the output budget requested from providers.
const DefaultMaxTokens = 8192

// ClientConfig tunes a Client.
type ClientConfig struct {
	Timeout   time.Duration
	MaxTokens int
}

// Client runs prompts against a primary provider with a single fallback to
// a secondary provider.
type Client struct {
	primary   Provider
	secondary Provider
	config    ClientConfig
	logger    *slog.Logger
	recorder  Recorder
}

// Option customises a Client.
type Option func(*Client)

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// NewClient creates a Client. secondary may be nil, in which case a primary
// failure is final.
func NewClient(
	primary, secondary Provider,
	config ClientConfig,
	logger *slog.Logger,
	opts ...Option,
) (*Client, error) {
	if primary == nil {
		return nil, ErrNoProvider
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	c := &Client{
		primary:   primary,
		secondary: secondary,
		config:    config,
		logger:    logger.With(slog.String("component", "generation_client")),
		recorder:  noopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate runs p and returns the validated JSON document.
func (c *Client) Generate(ctx context.Context, p prompt.Prompt) (json.RawMessage, error) {
	req := Request{
		System:    p.System,
		User:      p.User,
		JSON:      true,
		MaxTokens: c.config.MaxTokens,
		Schema:    p.Schema.Name,
	}

	out, primaryErr := c.attempt(ctx, c.primary, req, p)
	if primaryErr == nil {
		c.recorder.GenerationSucceeded(ctx, c.primary.Name(), p.Schema.Name, false)
		return out, nil
	}

	c.logger.WarnContext(ctx, "primary provider failed",
		slog.String("provider", c.primary.Name()),
		slog.String("schema", p.Schema.Name),
		slog.String("error", primaryErr.Error()))

	attempts := []error{primaryErr}
	if c.secondary != nil && ctx.Err() == nil {
		out, secondaryErr := c.attempt(ctx, c.secondary, req, p)
		if secondaryErr == nil {
			c.logger.InfoContext(ctx, "secondary provider succeeded",
				slog.String("provider", c.secondary.Name()),
				slog.String("schema", p.Schema.Name))
			c.recorder.GenerationSucceeded(ctx, c.secondary.Name(), p.Schema.Name, true)
			return out, nil
		}
		attempts = append(attempts, secondaryErr)
	}

	c.recorder.GenerationFailed(ctx, p.Schema.Name)
	return nil, &FailedError{Schema: p.Schema.Name, Attempts: attempts}
}

func (c *Client) attempt(
	ctx context.Context,
	provider Provider,
	req Request,
	p prompt.Prompt,
) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	text, err := provider.Invoke(callCtx, req)
	if err != nil {
		return nil, &ProviderError{Provider: provider.Name(), Err: err}
	}

	raw := ExtractJSON(text)
	if err := Validate(p.Schema, []byte(raw)); err != nil {
		return nil, &ProviderError{Provider: provider.Name(), Err: err}
	}

	c.logger.DebugContext(ctx, "provider returned valid content",
		slog.String("provider", provider.Name()),
		slog.String("schema", p.Schema.Name),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("bytes", len(raw)))

	return json.RawMessage(raw), nil
}

// String describes the provider chain, e.g. "gemini -> openai".
func (c *Client) String() string {
	if c.secondary == nil {
		return c.primary.Name()
	}
	return fmt.Sprintf("%s -> %s", c.primary.Name(), c.secondary.Name())
}
