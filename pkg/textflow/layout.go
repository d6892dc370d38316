package textflow

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/textflow/pkg/textflow/observability"
)

// ShapeKind identifies a drawing primitive.
type ShapeKind string

// Shape kinds.
const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeText      ShapeKind = "text"
)

// RectangleProps describes a filled box.
type RectangleProps struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ColorHex string  `json:"color_hex"`
}

// TextProps describes a text label.
type TextProps struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"`
	ColorHex string  `json:"color_hex"`
}

// Canvas is the drawing capability shapes are placed on. Implementations
// are expected to block until the shape exists.
type Canvas interface {
	CreateRectangle(ctx context.Context, props RectangleProps) error
	CreateText(ctx context.Context, props TextProps) error
}

// PlacementCommand is one drawing call.
type PlacementCommand struct {
	Kind     ShapeKind `json:"kind"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width,omitempty"`
	Height   float64   `json:"height,omitempty"`
	FontSize float64   `json:"font_size,omitempty"`
	ColorHex string    `json:"color_hex"`
	Text     string    `json:"text,omitempty"`
}

// Layout is the geometry of a vertical node stack.
type Layout struct {
	OriginX    float64
	OriginY    float64
	Spacing    float64
	Width      float64
	Height     float64
	Fill       string
	TextOffset float64
	FontSize   float64
	TextColor  string
}

// DefaultLayout stacks 200x100 white boxes 150 apart starting at (100, 100).
var DefaultLayout = Layout{
	OriginX:    100,
	OriginY:    100,
	Spacing:    150,
	Width:      200,
	Height:     100,
	Fill:       "#FFFFFF",
	TextOffset: 10,
	FontSize:   12,
	TextColor:  "#000000",
}

// Plan returns the commands for nodes under DefaultLayout.
func Plan(nodes NodeSequence) []PlacementCommand {
	return DefaultLayout.Plan(nodes)
}

// Plan returns two commands per node: a rectangle then its title label.
// The result depends only on node index and title.
func (l Layout) Plan(nodes NodeSequence) []PlacementCommand {
	cmds := make([]PlacementCommand, 0, 2*len(nodes))
	for i, n := range nodes {
		x := l.OriginX
		y := l.OriginY + float64(i)*l.Spacing
		cmds = append(cmds,
			PlacementCommand{
				Kind:     ShapeRectangle,
				X:        x,
				Y:        y,
				Width:    l.Width,
				Height:   l.Height,
				ColorHex: l.Fill,
			},
			PlacementCommand{
				Kind:     ShapeText,
				X:        x + l.TextOffset,
				Y:        y + l.TextOffset,
				FontSize: l.FontSize,
				ColorHex: l.TextColor,
				Text:     n.Title,
			},
		)
	}
	return cmds
}

// Emitter places planned shapes on a Canvas.
type Emitter struct {
	layout  Layout
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// NewEmitter returns an Emitter using DefaultLayout.
func NewEmitter(opts ...EmitterOption) *Emitter {
	e := &Emitter{
		layout:  DefaultLayout,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit issues each command in order and waits for it to complete. It stops
// at the first failure and returns a *DrawingError; shapes already placed
// are not removed. Cancellation between calls is reported the same way.
func (e *Emitter) Emit(ctx context.Context, nodes NodeSequence, c Canvas) (err error) {
	ctx, span := e.spans.StartEmitSpan(ctx, len(nodes))
	defer func() { e.spans.EndSpanWithError(span, err) }()

	for i, cmd := range e.layout.Plan(nodes) {
		index := i / 2
		if cerr := ctx.Err(); cerr != nil {
			return e.fail(index, i, cmd, cerr)
		}

		var derr error
		switch cmd.Kind {
		case ShapeRectangle:
			derr = c.CreateRectangle(ctx, RectangleProps{
				Width:    cmd.Width,
				Height:   cmd.Height,
				X:        cmd.X,
				Y:        cmd.Y,
				ColorHex: cmd.ColorHex,
			})
		case ShapeText:
			derr = c.CreateText(ctx, TextProps{
				Text:     cmd.Text,
				X:        cmd.X,
				Y:        cmd.Y,
				FontSize: cmd.FontSize,
				ColorHex: cmd.ColorHex,
			})
		}
		e.metrics.RecordPlacement(ctx, string(cmd.Kind), derr)
		if derr != nil {
			return e.fail(index, i, cmd, derr)
		}
	}
	return nil
}

func (e *Emitter) fail(index, issued int, cmd PlacementCommand, err error) error {
	observability.LogPlacementError(e.logger, index, string(cmd.Kind), issued, err)
	return &DrawingError{Index: index, Command: cmd, Err: err}
}
