package generation

import "context"

// Provider is a single generative text model.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Invoke sends the request and returns the raw text the model produced.
	// A non-nil error means the call itself failed; the text is not inspected.
	Invoke(ctx context.Context, req Request) (string, error)
}

// Request is a single model call.
type Request struct {
	System string
	User   string

	// JSON asks the provider for its native JSON output mode, if it has one.
	JSON bool

	MaxTokens   int
	Temperature float64

	// Schema names the expected shape. Deterministic providers use it to pick
	// their canned answer.
	Schema string
}

// Recorder receives generation outcomes. The telemetry package provides the
// OpenTelemetry implementation.
type Recorder interface {
	GenerationSucceeded(ctx context.Context, provider, schema string, fallback bool)
	GenerationFailed(ctx context.Context, schema string)
}

type noopRecorder struct{}

func (noopRecorder) GenerationSucceeded(context.Context, string, string, bool) {}
func (noopRecorder) GenerationFailed(context.Context, string)                  {}
