package stage

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph compilation.
var (
	// ErrNoEntry indicates SetEntry was not called before Compile.
	ErrNoEntry = errors.New("entry stage not set")

	// ErrEntryNotFound indicates the entry references an unknown stage.
	ErrEntryNotFound = errors.New("entry stage not found")

	// ErrStageNotFound indicates a transition references an unknown stage.
	ErrStageNotFound = errors.New("stage not found")

	// ErrNoTransition indicates a stage has neither an edge nor a branch.
	ErrNoTransition = errors.New("stage has no outgoing transition")
)

// Sentinel errors for execution.
var (
	// ErrMaxSteps indicates the run exceeded its step limit.
	ErrMaxSteps = errors.New("exceeded maximum steps")

	// ErrEmptyRoute indicates a router returned an empty stage ID.
	ErrEmptyRoute = errors.New("router returned empty stage")
)

// StageError wraps an error returned by a stage function.
type StageError struct {
	// StageID is the stage that failed.
	StageID string
	// Err is the error the stage returned.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.StageID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised inside a stage.
type PanicError struct {
	StageID string
	Value   any
	Stack   string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.StageID, e.Value)
}

// RouterError reports an invalid router decision.
type RouterError struct {
	// From is the stage whose branch was evaluated.
	From string
	// Returned is what the router returned.
	Returned string
	Err      error
}

// Error implements the error interface.
func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s returned %q: %v", e.From, e.Returned, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RouterError) Unwrap() error {
	return e.Err
}

// StepLimitError reports which stage would have run when the limit hit.
type StepLimitError struct {
	Max  int
	Next string
}

// Error implements the error interface.
func (e *StepLimitError) Error() string {
	return fmt.Sprintf("exceeded maximum steps (%d) before stage %s", e.Max, e.Next)
}

// Unwrap returns ErrMaxSteps for errors.Is support.
func (e *StepLimitError) Unwrap() error {
	return ErrMaxSteps
}
