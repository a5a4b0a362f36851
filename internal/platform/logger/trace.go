package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// traceHandler adds the trace and span ids of the active span to records
// logged with a context, so log lines join up with exported traces. Loggers
// that already carry a trace_id attribute are left alone.
type traceHandler struct {
	slog.Handler
	hasTraceID bool
}

const traceIDKey = "trace_id"

func newTraceHandler(h slog.Handler) slog.Handler {
	return traceHandler{Handler: h}
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() && !h.hasTraceID {
		r.AddAttrs(
			slog.String(traceIDKey, sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	has := h.hasTraceID
	for _, a := range attrs {
		if a.Key == traceIDKey {
			has = true
		}
	}
	return traceHandler{Handler: h.Handler.WithAttrs(attrs), hasTraceID: has}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{Handler: h.Handler.WithGroup(name), hasTraceID: h.hasTraceID}
}
