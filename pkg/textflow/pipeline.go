package textflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/textflow/pkg/textflow/llm"
	"github.com/randalmurphal/textflow/pkg/textflow/observability"
	"github.com/randalmurphal/textflow/pkg/textflow/prompt"
	"github.com/randalmurphal/textflow/pkg/textflow/stage"
)

// ErrEmptyResponse indicates the client reported success but returned no
// response at all.
var ErrEmptyResponse = errors.New("empty response content")

// Pipeline extracts flowchart nodes from text. It holds no per-call state
// and is safe for concurrent use.
type Pipeline struct {
	client  llm.Client
	parser  *Parser
	prompts prompt.Set
	model   string
	newID   func() string

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	machine *stage.Machine[*extraction]
}

// extraction is the state threaded through the stage machine.
type extraction struct {
	requestID  string
	input      string
	credential bool

	content  string
	nodes    NodeSequence
	source   Source
	parseErr error
	path     []State
}

// NewPipeline returns a Pipeline calling client for generation. It panics
// if an option supplies an invalid prompt set.
func NewPipeline(client llm.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:  client,
		parser:  NewParser(),
		prompts: prompt.Defaults(),
		newID:   uuid.NewString,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.prompts.Validate(); err != nil {
		panic(fmt.Sprintf("textflow: invalid prompts: %v", err))
	}

	m, err := p.buildMachine()
	if err != nil {
		panic(fmt.Sprintf("textflow: compile pipeline: %v", err))
	}
	p.machine = m
	return p
}

func (p *Pipeline) buildMachine() (*stage.Machine[*extraction], error) {
	return stage.NewGraph[*extraction]().
		AddStage(string(StateIdle), p.idle).
		AddStage(string(StateNoCredential), p.splitInput).
		AddStage(string(StateRequesting), p.request).
		AddStage(string(StateParsing), p.parse).
		AddStage(string(StateDegradedSplit), p.splitResponse).
		AddBranch(string(StateIdle), func(_ context.Context, x *extraction) string {
			if x.credential {
				return string(StateRequesting)
			}
			return string(StateNoCredential)
		}).
		AddEdge(string(StateNoCredential), stage.Done).
		AddEdge(string(StateRequesting), string(StateParsing)).
		AddBranch(string(StateParsing), func(_ context.Context, x *extraction) string {
			if x.parseErr != nil {
				return string(StateDegradedSplit)
			}
			return stage.Done
		}).
		AddEdge(string(StateDegradedSplit), stage.Done).
		SetEntry(string(StateIdle)).
		Compile()
}

// Extract converts input into flowchart nodes.
//
// Blank input is ignored. Without a credential the input itself is split
// into sentences. Otherwise the service is called exactly once; a reply
// that cannot be parsed is split into sentences instead. Service errors
// are never retried.
func (p *Pipeline) Extract(ctx context.Context, input string, hasCredential bool) Result {
	if strings.TrimSpace(input) == "" {
		r := Ignored()
		r.Path = []State{StateIdle}
		p.metrics.RecordExtraction(ctx, StatusIgnored.String(), "", 0, 0)
		return r
	}

	x := &extraction{
		requestID:  p.newID(),
		input:      input,
		credential: hasCredential,
	}

	start := time.Now()
	ctx, span := p.spans.StartExtractSpan(ctx, x.requestID, hasCredential)
	observability.LogExtractStart(p.logger, x.requestID, len(input), hasCredential)

	_, err := p.machine.Run(ctx, x, stage.WithHooks(p.stageHook(x.requestID)))

	var r Result
	if err != nil {
		r = Failed(unwrapStage(err))
	} else {
		r = Succeeded(x.nodes, x.source)
	}
	r.Path = x.path
	r.RequestID = x.requestID

	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000
	if r.Status == StatusSuccess {
		p.metrics.RecordExtraction(ctx, r.Status.String(), string(r.Source), len(r.Nodes), elapsed)
		observability.LogExtractComplete(p.logger, x.requestID, string(r.Source), len(r.Nodes), ms)
		p.spans.EndSpanWithError(span, nil)
	} else {
		kind := KindOf(r.Err).String()
		p.metrics.RecordExtraction(ctx, r.Status.String(), kind, 0, elapsed)
		observability.LogExtractError(p.logger, x.requestID, kind, r.Err, ms)
		p.spans.EndSpanWithError(span, r.Err)
	}
	return r
}

func (p *Pipeline) stageHook(requestID string) stage.Hook {
	return func(ctx context.Context, stageID string) (context.Context, func(time.Duration, error)) {
		ctx, span := p.spans.StartStageSpan(ctx, stageID)
		return ctx, func(d time.Duration, err error) {
			observability.LogStage(p.logger, requestID, stageID, float64(d.Microseconds())/1000)
			p.spans.EndSpanWithError(span, err)
		}
	}
}

// unwrapStage strips the stage engine's wrapper so callers see the
// pipeline's own error types at the top level.
func unwrapStage(err error) error {
	var se *stage.StageError
	if errors.As(err, &se) {
		return se.Err
	}
	return err
}

func (p *Pipeline) idle(_ context.Context, x *extraction) (*extraction, error) {
	x.path = append(x.path, StateIdle)
	return x, nil
}

func (p *Pipeline) splitInput(ctx context.Context, x *extraction) (*extraction, error) {
	x.path = append(x.path, StateNoCredential)
	observability.LogFallback(p.logger, x.requestID, "no_credential", nil)
	p.metrics.RecordFallback(ctx, "no_credential")

	x.nodes = Split(x.input)
	if len(x.nodes) == 0 {
		return x, ErrEmptyResult
	}
	x.source = SourceInputSplit
	return x, nil
}

func (p *Pipeline) request(ctx context.Context, x *extraction) (*extraction, error) {
	x.path = append(x.path, StateRequesting)

	msg, err := p.prompts.UserMessage(x.input)
	if err != nil {
		return x, fmt.Errorf("build user message: %w", err)
	}

	req := llm.UserRequest(p.prompts.System, msg)
	req.Model = p.model
	resp, err := p.client.Complete(ctx, req)
	if err != nil {
		return x, newServiceError("complete", err)
	}
	if resp == nil {
		return x, &ServiceError{Op: "complete", Err: ErrEmptyResponse}
	}

	x.content = resp.Content
	return x, nil
}

func (p *Pipeline) parse(ctx context.Context, x *extraction) (*extraction, error) {
	x.path = append(x.path, StateParsing)

	nodes, err := p.parser.Parse(x.content)
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			return x, err
		}
		x.parseErr = err
		observability.LogFallback(p.logger, x.requestID, "parse", err)
		p.metrics.RecordFallback(ctx, "parse")
		p.spans.AddSpanEvent(ctx, "fallback", attribute.String("reason", "parse"))
		return x, nil
	}

	x.nodes = nodes
	x.source = SourceService
	return x, nil
}

func (p *Pipeline) splitResponse(_ context.Context, x *extraction) (*extraction, error) {
	x.path = append(x.path, StateDegradedSplit)

	x.nodes = Split(x.content)
	if len(x.nodes) == 0 {
		return x, ErrEmptyResult
	}
	x.source = SourceResponseSplit
	return x, nil
}
