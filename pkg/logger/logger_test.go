package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestLogger_AddsComponentAttr(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithHandler("cart", slog.NewJSONHandler(&buf, nil))

	log.InfoContext(context.Background(), "item added")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "cart", record["component"])
	assert.Equal(t, "item added", record["msg"])
}

func TestLogger_StampsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithHandler("transport", slog.NewJSONHandler(&buf, nil))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x01},
		SpanID:  trace.SpanID{0x02},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.InfoContext(ctx, "request sent")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, sc.TraceID().String(), record["trace_id"])
	assert.Equal(t, sc.SpanID().String(), record["span_id"])
}

func TestLogger_NoTraceAttrsWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithHandler("transport", slog.NewJSONHandler(&buf, nil))

	log.InfoContext(context.Background(), "plain")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	_, hasTrace := record["trace_id"]
	assert.False(t, hasTrace)
}
