package llm

import "time"

// Role is the author of a chat turn.
type Role string

// Chat roles understood by every backend.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is one chat completion. SystemPrompt goes ahead of
// Messages. An empty Model or a zero Temperature keeps the client default.
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Model        string
	MaxTokens    int
	Temperature  float64
}

// UserRequest builds a request with a system instruction and a single user turn.
func UserRequest(system, user string) CompletionRequest {
	return CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: user}},
	}
}

func (r CompletionRequest) modelOr(fallback string) string {
	if r.Model != "" {
		return r.Model
	}
	return fallback
}

// CompletionResponse is what a backend produced for a request.
type CompletionResponse struct {
	Content      string
	Model        string
	FinishReason string
	// Usage is zero for backends that cannot report it.
	Usage   Usage
	Latency time.Duration
}

// Usage counts tokens as the service reports them.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
