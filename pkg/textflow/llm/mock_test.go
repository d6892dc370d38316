package llm_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/randalmurphal/textflow/pkg/textflow/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_FixedResponse(t *testing.T) {
	mock := llm.NewMockClient(`[{"title":"A"}]`)

	resp, err := mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, `[{"title":"A"}]`, resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestMockClient_SequentialResponses(t *testing.T) {
	mock := llm.NewMockClient("").WithResponses("first", "second")

	for _, want := range []string{"first", "second", "first"} {
		resp, err := mock.Complete(context.Background(), llm.CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
	}
}

func TestMockClient_WithError(t *testing.T) {
	expected := errors.New("service down")
	mock := llm.NewMockClient("").WithError(expected)

	_, err := mock.Complete(context.Background(), llm.CompletionRequest{})
	assert.Equal(t, expected, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestMockClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := llm.NewMockClient("x").Complete(ctx, llm.CompletionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockClient_CallTracking(t *testing.T) {
	mock := llm.NewMockClient("response")
	assert.Nil(t, mock.LastCall())

	_, _ = mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "first"}},
	})
	_, _ = mock.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "second"}},
	})

	assert.Equal(t, 2, mock.CallCount())
	require.NotNil(t, mock.LastCall())
	assert.Equal(t, "second", mock.LastCall().Messages[0].Content)
}

func TestMockClient_ConcurrentCalls(t *testing.T) {
	mock := llm.NewMockClient(`[{"title":"A"}]`)
	req := llm.UserRequest("", "go")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mock.Complete(context.Background(), req)
			assert.NoError(t, err)
			_ = mock.CallCount()
			_ = mock.LastCall()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, mock.CallCount())
	assert.Equal(t, "go", mock.LastCall().Messages[0].Content)
}

func TestError_Message(t *testing.T) {
	plain := llm.NewError("complete", errors.New("dial tcp: refused"), true)
	assert.Equal(t, "llm complete: dial tcp: refused", plain.Error())

	withStatus := &llm.Error{Op: "complete", StatusCode: 401, Err: errors.New("bad key")}
	assert.Equal(t, "llm complete: HTTP 401: bad key", withStatus.Error())
	assert.EqualError(t, errors.Unwrap(withStatus), "bad key")
}

func TestUserRequest(t *testing.T) {
	req := llm.UserRequest("sys", "hello")
	assert.Equal(t, "sys", req.SystemPrompt)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "hello"}, req.Messages[0])
	assert.Empty(t, req.Model)
}
