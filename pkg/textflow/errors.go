package textflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/textflow/pkg/textflow/llm"
)

// Sentinel errors.
var (
	// ErrEmptyResult indicates every applicable strategy produced zero nodes.
	ErrEmptyResult = errors.New("extraction produced no nodes")

	// ErrNoNodes indicates a flowchart was requested with nothing to draw.
	ErrNoNodes = errors.New("cannot create flowchart: no nodes available")
)

// ServiceError wraps a failed or empty response from the generation service.
type ServiceError struct {
	// Op is the operation that failed.
	Op string
	// StatusCode is the HTTP status when known, 0 otherwise.
	StatusCode int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation service %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation service %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newServiceError(op string, err error) *ServiceError {
	se := &ServiceError{Op: op, Err: err}
	var le *llm.Error
	if errors.As(err, &le) {
		se.StatusCode = le.StatusCode
	}
	return se
}

// ParseError reports that no parse strategy accepted the input.
// Attempts holds one error per strategy, in order.
type ParseError struct {
	Attempts []error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		msgs[i] = err.Error()
	}
	return "no parse strategy succeeded: " + strings.Join(msgs, "; ")
}

// Unwrap returns the per-strategy errors.
func (e *ParseError) Unwrap() []error {
	return e.Attempts
}

// DrawingError reports the first failed drawing call of an emission.
type DrawingError struct {
	// Index is the node whose shapes were being placed.
	Index int
	// Command is the placement that failed.
	Command PlacementCommand
	// Err is the canvas error or context error.
	Err error
}

// Error implements the error interface.
func (e *DrawingError) Error() string {
	return fmt.Sprintf("draw %s for node %d: %v", e.Command.Kind, e.Index, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DrawingError) Unwrap() error {
	return e.Err
}

// Kind classifies errors produced by this package.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindService
	KindParse
	KindEmptyResult
	KindDrawing
)

// String returns a stable name for logs, metrics and API responses.
func (k Kind) String() string {
	switch k {
	case KindService:
		return "service_error"
	case KindParse:
		return "parse_error"
	case KindEmptyResult:
		return "empty_result"
	case KindDrawing:
		return "drawing_error"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Drawing is checked first since a DrawingError
// may wrap anything a canvas returns.
func KindOf(err error) Kind {
	var (
		de *DrawingError
		se *ServiceError
		pe *ParseError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &de):
		return KindDrawing
	case errors.As(err, &se):
		return KindService
	case errors.As(err, &pe):
		return KindParse
	case errors.Is(err, ErrEmptyResult):
		return KindEmptyResult
	default:
		return KindUnknown
	}
}
