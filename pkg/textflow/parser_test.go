package textflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want NodeSequence
	}{
		{
			name: "strict array",
			raw:  `[{"title":"A","description":"B"}]`,
			want: NodeSequence{{Title: "A", Description: "B"}},
		},
		{
			name: "strict with surrounding whitespace",
			raw:  "\n  [{\"title\":\"A\",\"description\":\"B\"}]  \n",
			want: NodeSequence{{Title: "A", Description: "B"}},
		},
		{
			name: "embedded in prose",
			raw:  `Here is your plan: [{"title":"A"}] Hope that helps!`,
			want: NodeSequence{{Title: "A", Description: ""}},
		},
		{
			name: "code fence",
			raw:  "```json\n[{\"title\":\"A\",\"description\":\"x\"},{\"title\":\"B\",\"description\":\"y\"}]\n```",
			want: NodeSequence{{Title: "A", Description: "x"}, {Title: "B", Description: "y"}},
		},
		{
			name: "null description",
			raw:  `[{"title":"A","description":null}]`,
			want: NodeSequence{{Title: "A"}},
		},
		{
			name: "numbers and booleans coerced",
			raw:  `[{"title":1,"description":true},{"title":2.5,"description":false}]`,
			want: NodeSequence{{Title: "1", Description: "true"}, {Title: "2.5", Description: "false"}},
		},
		{
			name: "extra fields ignored",
			raw:  `[{"title":"A","description":"B","id":7,"children":[]}]`,
			want: NodeSequence{{Title: "A", Description: "B"}},
		},
		{
			name: "title trimmed, description verbatim",
			raw:  `[{"title":"  A  ","description":"  indented\n"}]`,
			want: NodeSequence{{Title: "A", Description: "  indented\n"}},
		},
		{
			name: "decomposed text kept",
			raw:  `[{"title":"Cafe\u0301","description":"re\u0301sume\u0301"}]`,
			want: NodeSequence{{Title: "Cafe\u0301", Description: "re\u0301sume\u0301"}},
		},
		{
			name: "order preserved",
			raw:  `[{"title":"3"},{"title":"1"},{"title":"2"}]`,
			want: NodeSequence{{Title: "3"}, {Title: "1"}, {Title: "2"}},
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParser_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "not json", raw: "not json at all", wantErr: ErrNoArray},
		{name: "empty array", raw: "[]", wantErr: ErrEmptyArray},
		{name: "missing title", raw: `[{"description":"B"}]`, wantErr: ErrMissingText},
		{name: "null title", raw: `[{"title":null}]`, wantErr: ErrMissingText},
		{name: "blank title", raw: `[{"title":"   "}]`, wantErr: ErrBlankTitle},
		{name: "string element", raw: `["A","B"]`, wantErr: ErrNotObject},
		{name: "null element", raw: `[null]`, wantErr: ErrNotObject},
		{name: "object description", raw: `[{"title":"A","description":{"x":1}}]`, wantErr: ErrFieldType},
		{name: "array title", raw: `[{"title":["A"]}]`, wantErr: ErrFieldType},
		{name: "one bad element rejects all", raw: `[{"title":"A"},{"title":""}]`, wantErr: ErrBlankTitle},
		{name: "brackets reversed", raw: "] nothing [", wantErr: ErrNoArray},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.raw)
			assert.Nil(t, got)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Len(t, pe.Attempts, 2)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParser_EmbeddedIsGreedy(t *testing.T) {
	// Two arrays in prose: the span from the first '[' to the last ']' is
	// not valid JSON, so recovery fails rather than guessing.
	raw := `first [{"title":"A"}] then [{"title":"B"}]`
	_, err := NewParser().Parse(raw)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestParser_ParseErrorMessage(t *testing.T) {
	_, err := NewParser().Parse("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict_array")
	assert.Contains(t, err.Error(), "embedded_array")
}

func TestParser_WithStrategies(t *testing.T) {
	errNever := errors.New("never")
	never := Strategy{Name: "never", Parse: func(string) (NodeSequence, error) { return nil, errNever }}
	always := Strategy{Name: "always", Parse: func(raw string) (NodeSequence, error) {
		return NodeSequence{{Title: raw}}, nil
	}}

	t.Run("first success wins", func(t *testing.T) {
		p := NewParser(WithStrategies(never, always, StrictArray))
		got, err := p.Parse("x")
		require.NoError(t, err)
		assert.Equal(t, NodeSequence{{Title: "x"}}, got)
	})

	t.Run("strict only", func(t *testing.T) {
		p := NewParser(WithStrategies(StrictArray))
		_, err := p.Parse(`plan: [{"title":"A"}]`)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Len(t, pe.Attempts, 1)
	})

	t.Run("empty result counts as failure", func(t *testing.T) {
		empty := Strategy{Name: "empty", Parse: func(string) (NodeSequence, error) { return nil, nil }}
		_, err := NewParser(WithStrategies(empty)).Parse("x")
		assert.ErrorIs(t, err, ErrEmptyArray)
	})

	t.Run("no strategies", func(t *testing.T) {
		_, err := NewParser(WithStrategies()).Parse(`[{"title":"A"}]`)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Empty(t, pe.Attempts)
	})
}
