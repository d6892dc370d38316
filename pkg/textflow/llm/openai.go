package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DeepSeek defaults. Any OpenAI-compatible chat-completions endpoint works.
const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
)

// OpenAI implements Client against an OpenAI-compatible chat-completions API.
type OpenAI struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	temperature float32
}

// OpenAIOption configures OpenAI.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	baseURL     string
	model       string
	timeout     time.Duration
	temperature float32
	httpClient  *http.Client
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the default model id.
func WithModel(model string) OpenAIOption {
	return func(c *openAIConfig) { c.model = model }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) { c.timeout = d }
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) OpenAIOption {
	return func(c *openAIConfig) { c.temperature = float32(t) }
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openAIConfig) { c.httpClient = hc }
}

// NewOpenAI creates a client authenticated with apiKey.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	cfg := openAIConfig{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		timeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.baseURL
	if cfg.httpClient != nil {
		clientCfg.HTTPClient = cfg.httpClient
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.model,
		timeout:     cfg.timeout,
		temperature: cfg.temperature,
	}
}

// Complete implements Client.
func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	temperature := o.temperature
	if req.Temperature != 0 {
		temperature = float32(req.Temperature)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.modelOr(o.model),
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, wrapOpenAIError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return nil, NewError("complete", errors.New("response contained no choices"), false)
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Latency: time.Since(start),
	}, nil
}

func wrapOpenAIError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return NewError("complete", fmt.Errorf("%w: %v", ctx.Err(), err), errors.Is(ctx.Err(), context.DeadlineExceeded))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Op:         "complete",
			StatusCode: apiErr.HTTPStatusCode,
			Retryable:  retryableStatus(apiErr.HTTPStatusCode),
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{
			Op:         "complete",
			StatusCode: reqErr.HTTPStatusCode,
			Retryable:  retryableStatus(reqErr.HTTPStatusCode),
			Err:        err,
		}
	}

	return NewError("complete", err, true)
}
