package telemetry

import (
	"context"
	"fmt"

	"github.com/phrazzld/studyrooms-api/internal/generation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	GenerationSuccesses = "studyrooms.generation.successes"
	GenerationFailures  = "studyrooms.generation.failures"
	GenerationFallbacks = "studyrooms.generation.fallbacks"
	TasksFinished       = "studyrooms.tasks.finished"
)

// Metrics records generation and task outcomes as OpenTelemetry counters.
type Metrics struct {
	successes metric.Int64Counter
	failures  metric.Int64Counter
	fallbacks metric.Int64Counter
	tasks     metric.Int64Counter
}

var _ generation.Recorder = (*Metrics)(nil)

// NewMetrics creates the counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	successes, err := meter.Int64Counter(GenerationSuccesses,
		metric.WithDescription("Generations that produced schema-valid content"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", GenerationSuccesses, err)
	}
	failures, err := meter.Int64Counter(GenerationFailures,
		metric.WithDescription("Generations where every provider failed"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", GenerationFailures, err)
	}
	fallbacks, err := meter.Int64Counter(GenerationFallbacks,
		metric.WithDescription("Generations served by the secondary provider"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", GenerationFallbacks, err)
	}
	tasks, err := meter.Int64Counter(TasksFinished,
		metric.WithDescription("Background tasks that finished, by type and status"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", TasksFinished, err)
	}

	return &Metrics{
		successes: successes,
		failures:  failures,
		fallbacks: fallbacks,
		tasks:     tasks,
	}, nil
}

// GenerationSucceeded implements generation.Recorder.
func (m *Metrics) GenerationSucceeded(ctx context.Context, provider, schema string, fallback bool) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("schema", schema),
	)
	m.successes.Add(ctx, 1, attrs)
	if fallback {
		m.fallbacks.Add(ctx, 1, attrs)
	}
}

// GenerationFailed implements generation.Recorder.
func (m *Metrics) GenerationFailed(ctx context.Context, schema string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("schema", schema)))
}

// TaskFinished counts a finished background task.
func (m *Metrics) TaskFinished(ctx context.Context, taskType string, err error) {
	status := "completed"
	if err != nil {
		status = "failed"
	}
	m.tasks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}
