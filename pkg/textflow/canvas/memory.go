package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/randalmurphal/textflow/pkg/textflow"
)

// Memory is an in-memory Surface. Data is lost when the process exits.
type Memory struct {
	mu     sync.RWMutex
	pages  map[string][]Shape
	fail   func(Shape) error
	closed bool
}

// NewMemory creates an empty in-memory surface.
func NewMemory() *Memory {
	return &Memory{pages: make(map[string][]Shape)}
}

// FailWhen installs a hook consulted before every placement. A non-nil
// return rejects the shape with that error. Pass nil to remove the hook.
func (m *Memory) FailWhen(fn func(Shape) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fn
}

// Page implements Surface.
func (m *Memory) Page(name string) textflow.Canvas {
	return pageCanvas{page: name, add: m.add}
}

func (m *Memory) add(ctx context.Context, s Shape) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Page == "" {
		return ErrEmptyPage
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	s.Seq = len(m.pages[s.Page]) + 1
	if m.fail != nil {
		if err := m.fail(s); err != nil {
			return err
		}
	}
	s.CreatedAt = time.Now().UTC()
	m.pages[s.Page] = append(m.pages[s.Page], s)
	return nil
}

// Shapes implements Surface.
func (m *Memory) Shapes(_ context.Context, page string) ([]Shape, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	// Copy to avoid exposing internal slice
	out := make([]Shape, len(m.pages[page]))
	copy(out, m.pages[page])
	return out, nil
}

// Clear implements Surface.
func (m *Memory) Clear(_ context.Context, page string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.pages, page)
	return nil
}

// Close implements Surface.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.pages = nil
	return nil
}

var _ Surface = (*Memory)(nil)
