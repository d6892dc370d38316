package textflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "periods and newlines",
			in:   "Step one. Step two.\nStep three.",
			want: []string{"Step one", "Step two", "Step three"},
		},
		{
			name: "runs of delimiters",
			in:   "A...B\n\n\nC.\n.D",
			want: []string{"A", "B", "C", "D"},
		},
		{
			name: "no delimiters",
			in:   "  just one step  ",
			want: []string{"just one step"},
		},
		{
			name: "whitespace segments dropped",
			in:   "A.   . \t\nB",
			want: []string{"A", "B"},
		},
		{
			name: "other punctuation kept",
			in:   "Is it ready? Yes! Ship it.",
			want: []string{"Is it ready? Yes! Ship it"},
		},
		{
			name: "decomposed text kept",
			in:   "Cafe\u0301 step. Next",
			want: []string{"Cafe\u0301 step", "Next"},
		},
		{
			name: "delimiters only",
			in:   "...\n.\n",
			want: nil,
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got.Titles())
			for _, n := range got {
				assert.Empty(t, n.Description)
			}
		})
	}
}

func TestSplit_ExactNodes(t *testing.T) {
	got := Split("Step one. Step two.\nStep three.")
	assert.Equal(t, NodeSequence{
		{Title: "Step one", Description: ""},
		{Title: "Step two", Description: ""},
		{Title: "Step three", Description: ""},
	}, got)
}
