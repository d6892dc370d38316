package stage

import (
	"context"
	"runtime/debug"
	"time"
)

// Machine is a compiled, immutable stage graph.
type Machine[S any] struct {
	stages   map[string]Func[S]
	edges    map[string]string
	branches map[string]Router[S]
	entry    string
	order    []string
}

// Entry returns the entry stage ID.
func (m *Machine[S]) Entry() string {
	return m.entry
}

// StageIDs returns stage IDs in registration order.
func (m *Machine[S]) StageIDs() []string {
	return append([]string(nil), m.order...)
}

// Hook observes stage execution. It is called before a stage runs and may
// return a derived context for the stage (for example one carrying a span).
// The returned function is called with the stage's outcome.
type Hook func(ctx context.Context, stageID string) (context.Context, func(d time.Duration, err error))

type runConfig struct {
	maxSteps int
	hooks    []Hook
}

// RunOption configures a single Run.
type RunOption func(*runConfig)

// WithMaxSteps bounds how many stages a run may execute. Default: 64.
func WithMaxSteps(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// WithHooks registers hooks invoked around every stage.
func WithHooks(hooks ...Hook) RunOption {
	return func(c *runConfig) {
		c.hooks = append(c.hooks, hooks...)
	}
}

// Run executes the machine from its entry stage until a transition targets
// Done. On error the returned state is the state at the point of failure.
func (m *Machine[S]) Run(ctx context.Context, state S, opts ...RunOption) (S, error) {
	cfg := runConfig{maxSteps: 64}
	for _, opt := range opts {
		opt(&cfg)
	}

	current := m.entry
	for steps := 0; current != Done; steps++ {
		if steps >= cfg.maxSteps {
			return state, &StepLimitError{Max: cfg.maxSteps, Next: current}
		}
		if err := ctx.Err(); err != nil {
			return state, &StageError{StageID: current, Err: err}
		}

		var err error
		state, err = m.runStage(ctx, current, state, cfg.hooks)
		if err != nil {
			return state, err
		}

		current, err = m.next(ctx, current, state)
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

func (m *Machine[S]) runStage(ctx context.Context, id string, state S, hooks []Hook) (S, error) {
	stageCtx := ctx
	dones := make([]func(time.Duration, error), 0, len(hooks))
	for _, h := range hooks {
		var done func(time.Duration, error)
		stageCtx, done = h(stageCtx, id)
		if done != nil {
			dones = append(dones, done)
		}
	}

	start := time.Now()
	result, err := m.call(stageCtx, id, state)
	elapsed := time.Since(start)

	for i := len(dones) - 1; i >= 0; i-- {
		dones[i](elapsed, err)
	}
	return result, err
}

// call invokes a stage with panic recovery.
func (m *Machine[S]) call(ctx context.Context, id string, state S) (result S, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{StageID: id, Value: r, Stack: string(debug.Stack())}
		}
	}()

	result, err = m.stages[id](ctx, state)
	if err != nil {
		return result, &StageError{StageID: id, Err: err}
	}
	return result, nil
}

func (m *Machine[S]) next(ctx context.Context, current string, state S) (string, error) {
	router, ok := m.branches[current]
	if !ok {
		return m.edges[current], nil
	}

	next := router(ctx, state)
	if next == "" {
		return "", &RouterError{From: current, Returned: next, Err: ErrEmptyRoute}
	}
	if _, known := m.stages[next]; !known && next != Done {
		return "", &RouterError{From: current, Returned: next, Err: ErrStageNotFound}
	}
	return next, nil
}
