package textflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/textflow/pkg/textflow/llm"
)

// gatedClient blocks requests whose message contains "slow" until release
// is closed. started is signalled once such a request is in flight.
type gatedClient struct {
	started chan struct{}
	release chan struct{}
}

func newGatedClient() *gatedClient {
	return &gatedClient{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	msg := req.Messages[0].Content
	if strings.Contains(msg, "slow") {
		g.started <- struct{}{}
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &llm.CompletionResponse{Content: `[{"title":"slow"}]`}, nil
	}
	return &llm.CompletionResponse{Content: `[{"title":"fast"}]`}, nil
}

func TestSession_Submit(t *testing.T) {
	s := NewSession(NewPipeline(llm.NewMockClient(planJSON)), true)

	r, ok := s.Submit(context.Background(), "Cook pasta")
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, r.Status)
	assert.Equal(t, r, s.Current())
}

func TestSession_BlankDoesNotReplace(t *testing.T) {
	s := NewSession(NewPipeline(llm.NewMockClient(planJSON)), true)

	first, _ := s.Submit(context.Background(), "Cook pasta")
	r, ok := s.Submit(context.Background(), "   ")

	assert.True(t, ok)
	assert.Equal(t, StatusIgnored, r.Status)
	assert.Equal(t, first, s.Current())
}

func TestSession_StaleResultDiscarded(t *testing.T) {
	client := newGatedClient()
	s := NewSession(NewPipeline(client), true)

	type outcome struct {
		r  Result
		ok bool
	}
	slowDone := make(chan outcome, 1)
	go func() {
		r, ok := s.Submit(context.Background(), "slow input")
		slowDone <- outcome{r, ok}
	}()

	select {
	case <-client.started:
	case <-time.After(5 * time.Second):
		t.Fatal("slow request never started")
	}

	fast, ok := s.Submit(context.Background(), "fast input")
	require.True(t, ok)
	assert.Equal(t, []string{"fast"}, fast.Nodes.Titles())

	close(client.release)
	slow := <-slowDone

	assert.False(t, slow.ok, "superseded result must be reported stale")
	assert.Equal(t, []string{"slow"}, slow.r.Nodes.Titles())
	assert.Equal(t, []string{"fast"}, s.Current().Nodes.Titles())
}

func TestSession_Draw(t *testing.T) {
	t.Run("no nodes yet", func(t *testing.T) {
		s := NewSession(NewPipeline(llm.NewMockClient(planJSON)), true)
		err := s.Draw(context.Background(), NewEmitter(), newRecordingCanvas())
		assert.ErrorIs(t, err, ErrNoNodes)
		assert.Equal(t, "cannot create flowchart: no nodes available", err.Error())
	})

	t.Run("after failure", func(t *testing.T) {
		s := NewSession(NewPipeline(llm.NewMockClient("...")), true)
		r, _ := s.Submit(context.Background(), "Cook pasta")
		require.Equal(t, StatusFailure, r.Status)

		err := s.Draw(context.Background(), NewEmitter(), newRecordingCanvas())
		assert.ErrorIs(t, err, ErrNoNodes)
	})

	t.Run("after success", func(t *testing.T) {
		s := NewSession(NewPipeline(llm.NewMockClient(planJSON)), false)
		_, ok := s.Submit(context.Background(), "One. Two.")
		require.True(t, ok)

		c := newRecordingCanvas()
		require.NoError(t, s.Draw(context.Background(), NewEmitter(), c))
		assert.Len(t, c.calls, 4)
		assert.Equal(t, "Two", c.calls[3].Text)
	})
}
