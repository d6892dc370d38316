package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracingTest(t *testing.T) (SpanManager, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown tracer provider: %v", err)
		}
	})
	return NewSpanManager(tp), exporter
}

func attr(s tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartExtractSpan(t *testing.T) {
	spans, exporter := setupTracingTest(t)

	_, span := spans.StartExtractSpan(context.Background(), "req-1", true)
	spans.EndSpanWithError(span, nil)

	got := exporter.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, "textflow.extract", got[0].Name)
	assert.Equal(t, codes.Ok, got[0].Status.Code)

	id, ok := attr(got[0], "request.id")
	require.True(t, ok)
	assert.Equal(t, "req-1", id.AsString())
	cred, ok := attr(got[0], "credential.present")
	require.True(t, ok)
	assert.True(t, cred.AsBool())
}

func TestStageSpanIsChild(t *testing.T) {
	spans, exporter := setupTracingTest(t)

	ctx, parent := spans.StartExtractSpan(context.Background(), "req-1", false)
	_, child := spans.StartStageSpan(ctx, "parsing")
	spans.EndSpanWithError(child, nil)
	spans.EndSpanWithError(parent, nil)

	got := exporter.GetSpans()
	require.Len(t, got, 2)
	assert.Equal(t, "textflow.stage.parsing", got[0].Name)
	assert.Equal(t, got[1].SpanContext.SpanID(), got[0].Parent.SpanID())
}

func TestEndSpanWithError(t *testing.T) {
	spans, exporter := setupTracingTest(t)

	_, span := spans.StartEmitSpan(context.Background(), 3)
	spans.EndSpanWithError(span, errors.New("canvas locked"))

	got := exporter.GetSpans()
	require.Len(t, got, 1)
	assert.Equal(t, "textflow.emit", got[0].Name)
	assert.Equal(t, codes.Error, got[0].Status.Code)
	assert.Equal(t, "canvas locked", got[0].Status.Description)
	require.NotEmpty(t, got[0].Events)
	assert.Equal(t, "exception", got[0].Events[0].Name)
}

func TestEndSpanWithError_NilSpan(t *testing.T) {
	spans, _ := setupTracingTest(t)
	assert.NotPanics(t, func() { spans.EndSpanWithError(nil, nil) })
}

func TestAddSpanEvent(t *testing.T) {
	spans, exporter := setupTracingTest(t)

	ctx, span := spans.StartExtractSpan(context.Background(), "req-1", true)
	spans.AddSpanEvent(ctx, "fallback", attribute.String("reason", "parse"))
	spans.EndSpanWithError(span, nil)

	got := exporter.GetSpans()
	require.Len(t, got, 1)
	require.Len(t, got[0].Events, 1)
	assert.Equal(t, "fallback", got[0].Events[0].Name)
}

func TestAddSpanEvent_NoSpan(t *testing.T) {
	spans, _ := setupTracingTest(t)
	assert.NotPanics(t, func() { spans.AddSpanEvent(context.Background(), "orphan") })
}
