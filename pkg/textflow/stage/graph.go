package stage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Done is the terminal transition target.
const Done = "__done__"

// Func is the signature of a stage. It receives the current state by value
// and returns the state handed to the next stage.
type Func[S any] func(ctx context.Context, state S) (S, error)

// Router picks the next stage from the state a stage produced.
// It must return a known stage ID or Done.
type Router[S any] func(ctx context.Context, state S) string

// Graph is a mutable builder for a Machine.
// It is not safe for concurrent use; build in one goroutine, then Compile.
type Graph[S any] struct {
	stages   map[string]Func[S]
	order    []string
	edges    map[string]string
	branches map[string]Router[S]
	entry    string
}

// NewGraph creates an empty builder for state type S.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		stages:   make(map[string]Func[S]),
		edges:    make(map[string]string),
		branches: make(map[string]Router[S]),
	}
}

// AddStage registers a stage under id.
//
// Panics if id is empty, contains whitespace, equals Done, is already
// registered, or fn is nil. These are programming errors in graph wiring.
func (g *Graph[S]) AddStage(id string, fn Func[S]) *Graph[S] {
	switch {
	case id == "":
		panic("stage: stage ID cannot be empty")
	case strings.EqualFold(id, Done):
		panic("stage: stage ID cannot be the reserved Done target")
	case strings.ContainsAny(id, " \t\n\r"):
		panic("stage: stage ID cannot contain whitespace")
	case fn == nil:
		panic("stage: stage function cannot be nil")
	}
	if _, exists := g.stages[id]; exists {
		panic(fmt.Sprintf("stage: duplicate stage ID: %s", id))
	}
	g.stages[id] = fn
	g.order = append(g.order, id)
	return g
}

// AddEdge adds a fixed transition. A later AddEdge from the same stage
// replaces the earlier one. A branch on the same stage takes precedence.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.edges[from] = to
	return g
}

// AddBranch adds a state-dependent transition from a stage.
func (g *Graph[S]) AddBranch(from string, router Router[S]) *Graph[S] {
	if router == nil {
		panic("stage: router cannot be nil")
	}
	g.branches[from] = router
	return g
}

// SetEntry designates the first stage to run.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.entry = id
	return g
}

// Compile validates the graph and returns an immutable Machine.
// All validation failures are joined into one error.
func (g *Graph[S]) Compile() (*Machine[S], error) {
	var errs []error

	if g.entry == "" {
		errs = append(errs, ErrNoEntry)
	} else if _, ok := g.stages[g.entry]; !ok {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entry))
	}

	for _, from := range sortedKeys(g.edges) {
		to := g.edges[from]
		if _, ok := g.stages[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: edge source %q", ErrStageNotFound, from))
		}
		if _, ok := g.stages[to]; !ok && to != Done {
			errs = append(errs, fmt.Errorf("%w: edge target %q", ErrStageNotFound, to))
		}
	}
	for _, from := range sortedKeys(g.branches) {
		if _, ok := g.stages[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: branch source %q", ErrStageNotFound, from))
		}
	}

	for _, id := range g.order {
		_, hasEdge := g.edges[id]
		_, hasBranch := g.branches[id]
		if !hasEdge && !hasBranch {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoTransition, id))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	m := &Machine[S]{
		stages:   make(map[string]Func[S], len(g.stages)),
		edges:    make(map[string]string, len(g.edges)),
		branches: make(map[string]Router[S], len(g.branches)),
		entry:    g.entry,
		order:    append([]string(nil), g.order...),
	}
	for id, fn := range g.stages {
		m.stages[id] = fn
	}
	for from, to := range g.edges {
		m.edges[from] = to
	}
	for from, r := range g.branches {
		m.branches[from] = r
	}
	return m, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
