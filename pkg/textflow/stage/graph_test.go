package stage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Value int
	Seen  []string
}

func bump(id string) Func[counter] {
	return func(_ context.Context, c counter) (counter, error) {
		c.Value++
		c.Seen = append(c.Seen, id)
		return c, nil
	}
}

func TestGraph_AddStage_Panics(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		fn    Func[counter]
		value string
	}{
		{"empty id", "", bump("x"), "stage: stage ID cannot be empty"},
		{"reserved", Done, bump("x"), "stage: stage ID cannot be the reserved Done target"},
		{"whitespace", "a b", bump("x"), "stage: stage ID cannot contain whitespace"},
		{"nil func", "a", nil, "stage: stage function cannot be nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PanicsWithValue(t, tt.value, func() {
				NewGraph[counter]().AddStage(tt.id, tt.fn)
			})
		})
	}
}

func TestGraph_AddStage_Duplicate(t *testing.T) {
	assert.PanicsWithValue(t, "stage: duplicate stage ID: a", func() {
		NewGraph[counter]().AddStage("a", bump("a")).AddStage("a", bump("a"))
	})
}

func TestGraph_AddBranch_NilRouter(t *testing.T) {
	assert.Panics(t, func() {
		NewGraph[counter]().AddBranch("a", nil)
	})
}

func TestGraph_Compile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := NewGraph[counter]().
			AddStage("a", bump("a")).
			AddStage("b", bump("b")).
			AddEdge("a", "b").
			AddEdge("b", Done).
			SetEntry("a").
			Compile()
		require.NoError(t, err)
		assert.Equal(t, "a", m.Entry())
		assert.Equal(t, []string{"a", "b"}, m.StageIDs())
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := NewGraph[counter]().
			AddStage("a", bump("a")).
			AddEdge("a", Done).
			Compile()
		assert.ErrorIs(t, err, ErrNoEntry)
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, err := NewGraph[counter]().
			AddStage("a", bump("a")).
			AddEdge("a", Done).
			SetEntry("zzz").
			Compile()
		assert.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("unknown edge target", func(t *testing.T) {
		_, err := NewGraph[counter]().
			AddStage("a", bump("a")).
			AddEdge("a", "missing").
			SetEntry("a").
			Compile()
		assert.ErrorIs(t, err, ErrStageNotFound)
	})

	t.Run("branch from unknown stage", func(t *testing.T) {
		_, err := NewGraph[counter]().
			AddStage("a", bump("a")).
			AddEdge("a", Done).
			AddBranch("ghost", func(context.Context, counter) string { return Done }).
			SetEntry("a").
			Compile()
		assert.ErrorIs(t, err, ErrStageNotFound)
	})

	t.Run("stage without transition", func(t *testing.T) {
		_, err := NewGraph[counter]().
			AddStage("a", bump("a")).
			AddStage("b", bump("b")).
			AddEdge("a", Done).
			SetEntry("a").
			Compile()
		assert.ErrorIs(t, err, ErrNoTransition)
	})

	t.Run("errors are joined", func(t *testing.T) {
		_, err := NewGraph[counter]().
			AddStage("a", bump("a")).
			AddEdge("a", "missing").
			Compile()
		assert.ErrorIs(t, err, ErrNoEntry)
		assert.ErrorIs(t, err, ErrStageNotFound)
	})
}
