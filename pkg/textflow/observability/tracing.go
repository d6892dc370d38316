package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanManager handles trace span lifecycle.
// Use NewSpanManager for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartExtractSpan starts the span covering one extraction call.
	StartExtractSpan(ctx context.Context, requestID string, credential bool) (context.Context, trace.Span)

	// StartStageSpan starts a child span for a pipeline stage.
	StartStageSpan(ctx context.Context, stageID string) (context.Context, trace.Span)

	// StartEmitSpan starts the span covering one layout emission.
	StartEmitSpan(ctx context.Context, nodes int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, recording err when non-nil.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the span in ctx.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager using provider, or the global OTel
// tracer provider when provider is nil.
func NewSpanManager(provider trace.TracerProvider) SpanManager {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &otelSpanManager{tracer: provider.Tracer("textflow")}
}

func (m *otelSpanManager) StartExtractSpan(ctx context.Context, requestID string, credential bool) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "textflow.extract",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.Bool("credential.present", credential),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) StartStageSpan(ctx context.Context, stageID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "textflow.stage."+stageID,
		trace.WithAttributes(attribute.String("stage.id", stageID)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) StartEmitSpan(ctx context.Context, nodes int) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "textflow.emit",
		trace.WithAttributes(attribute.Int("nodes", nodes)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
