// Package llm defines the generation-service client used by the extraction
// pipeline and its backends: an OpenAI-compatible HTTP backend, a local CLI
// backend and a mock for tests.
package llm

import (
	"context"
	"fmt"
)

// Client performs a single request/response completion.
// Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Error describes a failed completion.
type Error struct {
	// Op is the operation that failed ("complete").
	Op string
	// StatusCode is the HTTP status when the service answered, 0 otherwise.
	StatusCode int
	// Retryable reports whether the failure looks transient. Informational;
	// nothing in this module retries.
	Retryable bool
	Err       error
}

// NewError wraps err for op.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// retryableStatus reports whether an HTTP status usually clears on its own.
func retryableStatus(code int) bool {
	switch code {
	case 429, 503, 504, 529:
		return true
	}
	return code >= 500
}
