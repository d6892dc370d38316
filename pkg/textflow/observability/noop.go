package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordExtraction does nothing.
func (NoopMetrics) RecordExtraction(context.Context, string, string, int, time.Duration) {}

// RecordFallback does nothing.
func (NoopMetrics) RecordFallback(context.Context, string) {}

// RecordPlacement does nothing.
func (NoopMetrics) RecordPlacement(context.Context, string, error) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartExtractSpan returns ctx unchanged and a no-op span.
func (NoopSpanManager) StartExtractSpan(ctx context.Context, _ string, _ bool) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartStageSpan returns ctx unchanged and a no-op span.
func (NoopSpanManager) StartStageSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartEmitSpan returns ctx unchanged and a no-op span.
func (NoopSpanManager) StartEmitSpan(ctx context.Context, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(context.Context, string, ...attribute.KeyValue) {}
