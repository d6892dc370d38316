package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records pipeline and layout metrics.
// Use NewMetricsRecorder for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordExtraction records a finished extraction. outcome is "success",
	// "failure" or "ignored"; source is the producing strategy or the
	// failure kind.
	RecordExtraction(ctx context.Context, outcome, source string, nodes int, duration time.Duration)

	// RecordFallback records a switch to the sentence splitter.
	RecordFallback(ctx context.Context, reason string)

	// RecordPlacement records one drawing call.
	RecordPlacement(ctx context.Context, shape string, err error)
}

type otelMetrics struct {
	extractions       metric.Int64Counter
	extractionLatency metric.Float64Histogram
	extractionNodes   metric.Int64Histogram
	fallbacks         metric.Int64Counter
	placements        metric.Int64Counter
	placementErrors   metric.Int64Counter
}

func newOtelMetrics(provider metric.MeterProvider) (*otelMetrics, error) {
	meter := provider.Meter("textflow")

	extractions, err := meter.Int64Counter("textflow.extractions",
		metric.WithDescription("Number of extraction calls"),
	)
	if err != nil {
		return nil, err
	}

	extractionLatency, err := meter.Float64Histogram("textflow.extraction.latency_ms",
		metric.WithDescription("Extraction latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	extractionNodes, err := meter.Int64Histogram("textflow.extraction.nodes",
		metric.WithDescription("Nodes produced per successful extraction"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter("textflow.fallbacks",
		metric.WithDescription("Number of degraded sentence-split fallbacks"),
	)
	if err != nil {
		return nil, err
	}

	placements, err := meter.Int64Counter("textflow.placements",
		metric.WithDescription("Number of drawing calls issued"),
	)
	if err != nil {
		return nil, err
	}

	placementErrors, err := meter.Int64Counter("textflow.placement.errors",
		metric.WithDescription("Number of failed drawing calls"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		extractions:       extractions,
		extractionLatency: extractionLatency,
		extractionNodes:   extractionNodes,
		fallbacks:         fallbacks,
		placements:        placements,
		placementErrors:   placementErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by provider, or by the
// global OTel meter provider when provider is nil. If instrument creation
// fails it logs a warning and returns NoopMetrics.
func NewMetricsRecorder(provider metric.MeterProvider) MetricsRecorder {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	m, err := newOtelMetrics(provider)
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordExtraction implements MetricsRecorder.
func (m *otelMetrics) RecordExtraction(ctx context.Context, outcome, source string, nodes int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	)
	m.extractions.Add(ctx, 1, attrs)
	m.extractionLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if outcome == "success" {
		m.extractionNodes.Record(ctx, int64(nodes), attrs)
	}
}

// RecordFallback implements MetricsRecorder.
func (m *otelMetrics) RecordFallback(ctx context.Context, reason string) {
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordPlacement implements MetricsRecorder.
func (m *otelMetrics) RecordPlacement(ctx context.Context, shape string, err error) {
	attrs := metric.WithAttributes(attribute.String("shape", shape))
	m.placements.Add(ctx, 1, attrs)
	if err != nil {
		m.placementErrors.Add(ctx, 1, attrs)
	}
}
