package textflow

import (
	"log/slog"

	"github.com/randalmurphal/textflow/pkg/textflow/observability"
	"github.com/randalmurphal/textflow/pkg/textflow/prompt"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: observability.NoopMetrics{}.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithTracing sets the span manager. Default: observability.NoopSpanManager{}.
func WithTracing(s observability.SpanManager) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.spans = s
		}
	}
}

// WithPrompts overrides the system instruction and user template.
// The set is validated by NewPipeline.
func WithPrompts(s prompt.Set) Option {
	return func(p *Pipeline) {
		p.prompts = s
	}
}

// WithParser replaces the default response parser.
func WithParser(parser *Parser) Option {
	return func(p *Pipeline) {
		if parser != nil {
			p.parser = parser
		}
	}
}

// WithModel overrides the client's default model for each request.
func WithModel(model string) Option {
	return func(p *Pipeline) {
		p.model = model
	}
}

// WithRequestIDs sets the request ID generator. Default: uuid.NewString.
func WithRequestIDs(gen func() string) Option {
	return func(p *Pipeline) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithEmitterLogger sets the emitter logger. Default: slog.Default().
func WithEmitterLogger(logger *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEmitterMetrics sets the emitter metrics recorder.
func WithEmitterMetrics(m observability.MetricsRecorder) EmitterOption {
	return func(e *Emitter) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithEmitterTracing sets the emitter span manager.
func WithEmitterTracing(s observability.SpanManager) EmitterOption {
	return func(e *Emitter) {
		if s != nil {
			e.spans = s
		}
	}
}

// WithLayout replaces the default geometry.
func WithLayout(l Layout) EmitterOption {
	return func(e *Emitter) {
		e.layout = l
	}
}
