// Package telemetry wires OpenTelemetry tracing and metrics for the service:
// spans around background tasks and counters for generation outcomes.
package telemetry
