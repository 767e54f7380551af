// Package logger is the engine's structured logging facade. It wraps
// log/slog with a handler that stamps every record with the OpenTelemetry
// trace and span ids found in the context, so client logs line up with
// server-side traces of the same request.
package logger

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

type Logger struct {
	*slog.Logger
}

// New builds a JSON logger for the given component writing to stderr.
func New(component string) *Logger {
	h := &traceHandler{Handler: slog.NewJSONHandler(os.Stderr, nil)}
	return &Logger{Logger: slog.New(h).With("component", component)}
}

// NewWithHandler wires an arbitrary slog handler, used by tests.
func NewWithHandler(component string, h slog.Handler) *Logger {
	return &Logger{Logger: slog.New(&traceHandler{Handler: h}).With("component", component)}
}

type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}
