package textflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/randalmurphal/textflow/pkg/textflow/observability"
)

// Session is an interactive extraction context with last-write-wins
// semantics: a result is only kept if no newer Submit started meanwhile.
type Session struct {
	pipeline   *Pipeline
	credential bool
	logger     *slog.Logger

	mu      sync.Mutex
	newest  uint64
	current Result
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger. Default: slog.Default().
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession returns a Session extracting through p.
func NewSession(p *Pipeline, hasCredential bool, opts ...SessionOption) *Session {
	s := &Session{
		pipeline:   p,
		credential: hasCredential,
		logger:     slog.Default(),
		current:    Ignored(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit extracts nodes from text. The returned bool is false when the
// result was superseded by a later Submit and therefore discarded. Blank
// input is ignored without superseding anything.
func (s *Session) Submit(ctx context.Context, text string) (Result, bool) {
	if strings.TrimSpace(text) == "" {
		return Ignored(), true
	}

	s.mu.Lock()
	s.newest++
	token := s.newest
	s.mu.Unlock()

	r := s.pipeline.Extract(ctx, text, s.credential)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.newest {
		observability.LogStaleResult(s.logger, token, s.newest)
		return r, false
	}
	s.current = r
	return r, true
}

// Current returns the most recent accepted result.
func (s *Session) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Draw emits the current nodes onto c. It returns ErrNoNodes unless the
// current result is a success.
func (s *Session) Draw(ctx context.Context, e *Emitter, c Canvas) error {
	r := s.Current()
	if r.Status != StatusSuccess || len(r.Nodes) == 0 {
		return ErrNoNodes
	}
	return e.Emit(ctx, r.Nodes, c)
}
