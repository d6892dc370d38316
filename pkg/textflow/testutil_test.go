package textflow

import (
	"context"
	"errors"
	"sync"
)

// recordingCanvas records every drawing call and can fail the n-th call
// of a given kind (1-based).
type recordingCanvas struct {
	mu       sync.Mutex
	calls    []PlacementCommand
	failKind ShapeKind
	failAt   int
	seen     map[ShapeKind]int
	err      error
}

var errCanvasLocked = errors.New("canvas locked")

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{seen: map[ShapeKind]int{}}
}

func (c *recordingCanvas) failOn(kind ShapeKind, n int) *recordingCanvas {
	c.failKind = kind
	c.failAt = n
	c.err = errCanvasLocked
	return c
}

func (c *recordingCanvas) check(kind ShapeKind) error {
	c.seen[kind]++
	if c.err != nil && kind == c.failKind && c.seen[kind] == c.failAt {
		return c.err
	}
	return nil
}

func (c *recordingCanvas) CreateRectangle(_ context.Context, p RectangleProps) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(ShapeRectangle); err != nil {
		return err
	}
	c.calls = append(c.calls, PlacementCommand{
		Kind: ShapeRectangle, X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, ColorHex: p.ColorHex,
	})
	return nil
}

func (c *recordingCanvas) CreateText(_ context.Context, p TextProps) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check(ShapeText); err != nil {
		return err
	}
	c.calls = append(c.calls, PlacementCommand{
		Kind: ShapeText, X: p.X, Y: p.Y, FontSize: p.FontSize, ColorHex: p.ColorHex, Text: p.Text,
	})
	return nil
}

// attempts counts every call including failed ones.
func (c *recordingCanvas) attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[ShapeRectangle] + c.seen[ShapeText]
}

func fixedIDs(id string) Option {
	return WithRequestIDs(func() string { return id })
}
