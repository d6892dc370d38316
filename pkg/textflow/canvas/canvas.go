// Package canvas provides drawing surfaces for flowchart layout: an
// in-memory surface for tests and interactive use, and a SQLite-backed
// document surface. Surfaces are opened by driver name through a registry.
package canvas

import (
	"context"
	"errors"
	"time"

	"github.com/randalmurphal/textflow/pkg/textflow"
)

// Sentinel errors.
var (
	// ErrClosed indicates the surface has been closed.
	ErrClosed = errors.New("canvas closed")

	// ErrUnknownDriver indicates no driver is registered under the name.
	ErrUnknownDriver = errors.New("unknown canvas driver")

	// ErrEmptyPage indicates a blank page name.
	ErrEmptyPage = errors.New("page name is empty")
)

// Shape is a primitive placed on a page.
type Shape struct {
	Page      string             `json:"page"`
	Seq       int                `json:"seq"`
	Kind      textflow.ShapeKind `json:"kind"`
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	Width     float64            `json:"width,omitempty"`
	Height    float64            `json:"height,omitempty"`
	FontSize  float64            `json:"font_size,omitempty"`
	ColorHex  string             `json:"color_hex"`
	Text      string             `json:"text,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Surface holds named pages of shapes.
// Implementations must be safe for concurrent use.
type Surface interface {
	// Page returns a Canvas appending to the named page.
	Page(name string) textflow.Canvas

	// Shapes returns the shapes on a page in placement order. A page with
	// no shapes yields an empty slice, not an error.
	Shapes(ctx context.Context, page string) ([]Shape, error)

	// Clear removes every shape on a page.
	Clear(ctx context.Context, page string) error

	// Close releases resources. Further calls return ErrClosed.
	Close() error
}

func rectangleShape(page string, p textflow.RectangleProps) Shape {
	return Shape{
		Page:     page,
		Kind:     textflow.ShapeRectangle,
		X:        p.X,
		Y:        p.Y,
		Width:    p.Width,
		Height:   p.Height,
		ColorHex: p.ColorHex,
	}
}

func textShape(page string, p textflow.TextProps) Shape {
	return Shape{
		Page:     page,
		Kind:     textflow.ShapeText,
		X:        p.X,
		Y:        p.Y,
		FontSize: p.FontSize,
		ColorHex: p.ColorHex,
		Text:     p.Text,
	}
}

// pageCanvas adapts a page of a Surface to textflow.Canvas.
type pageCanvas struct {
	page string
	add  func(ctx context.Context, s Shape) error
}

func (c pageCanvas) CreateRectangle(ctx context.Context, p textflow.RectangleProps) error {
	return c.add(ctx, rectangleShape(c.page, p))
}

func (c pageCanvas) CreateText(ctx context.Context, p textflow.TextProps) error {
	return c.add(ctx, textShape(c.page, p))
}
