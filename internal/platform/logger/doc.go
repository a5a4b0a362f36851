// Package logger sets up the service's JSON slog logger and carries
// request- and task-scoped loggers through context.Context. Records logged
// with a context that holds an OpenTelemetry span get its trace and span ids.
package logger
