package llm

import (
	"context"
	"sync"
)

// MockClient is a Client for tests. It returns a fixed response, cycles
// through a list of responses, or fails with a configured error, and records
// every request it receives.
type MockClient struct {
	mu        sync.Mutex
	response  string
	responses []string
	next      int
	err       error
	calls     []CompletionRequest
}

// NewMockClient returns a mock that always answers with response.
func NewMockClient(response string) *MockClient {
	return &MockClient{response: response}
}

// WithResponses makes the mock cycle through responses in order.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.next = 0
	return m
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	content := m.response
	if len(m.responses) > 0 {
		content = m.responses[m.next%len(m.responses)]
		m.next++
	}
	return &CompletionResponse{
		Content:      content,
		Model:        "mock",
		FinishReason: "stop",
	}, nil
}

// CallCount returns how many requests were received.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent request, or nil.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	req := m.calls[len(m.calls)-1]
	return &req
}

// Compile-time interface checks.
var (
	_ Client = (*MockClient)(nil)
	_ Client = (*OpenAI)(nil)
	_ Client = (*Command)(nil)
)
