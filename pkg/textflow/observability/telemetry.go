package observability

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TelemetryConfig selects which OpenTelemetry signals are exported.
// Exported data is written as JSON to Writer.
type TelemetryConfig struct {
	ServiceName string
	Metrics     bool
	Tracing     bool
	Writer      io.Writer
}

// Telemetry holds the recorders built by Setup.
type Telemetry struct {
	Metrics MetricsRecorder
	Spans   SpanManager

	shutdownFuncs []func(context.Context) error
}

// Shutdown flushes and stops every provider Setup started.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdownFuncs) - 1; i >= 0; i-- {
		errs = append(errs, t.shutdownFuncs[i](ctx))
	}
	t.shutdownFuncs = nil
	return errors.Join(errs...)
}

// Setup builds metric and trace providers for the enabled signals and
// installs them as the OTel globals. Disabled signals get no-op recorders.
func Setup(cfg TelemetryConfig) (*Telemetry, error) {
	t := &Telemetry{Metrics: NoopMetrics{}, Spans: NoopSpanManager{}}
	if !cfg.Metrics && !cfg.Tracing {
		return t, nil
	}

	name := cfg.ServiceName
	if name == "" {
		name = "textflow"
	}
	res := resource.NewSchemaless(attribute.String("service.name", name))

	if cfg.Tracing {
		opts := []stdouttrace.Option{}
		if cfg.Writer != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Writer))
		}
		exporter, err := stdouttrace.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		t.Spans = NewSpanManager(tp)
		t.shutdownFuncs = append(t.shutdownFuncs, tp.Shutdown)
	}

	if cfg.Metrics {
		opts := []stdoutmetric.Option{}
		if cfg.Writer != nil {
			opts = append(opts, stdoutmetric.WithWriter(cfg.Writer))
		}
		exporter, err := stdoutmetric.New(opts...)
		if err != nil {
			_ = t.Shutdown(context.Background())
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		t.Metrics = NewMetricsRecorder(mp)
		t.shutdownFuncs = append(t.shutdownFuncs, mp.Shutdown)
	}

	return t, nil
}
