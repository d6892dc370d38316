package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command implements Client by running a local model CLI that accepts
// --print, --system-prompt, --model and -p flags and writes the reply to
// stdout. The CLI handles its own authentication.
type Command struct {
	path    string
	model   string
	workdir string
	timeout time.Duration
}

// CommandOption configures Command.
type CommandOption func(*Command)

// NewCommand creates a CLI-backed client. path defaults to "claude".
func NewCommand(path string, opts ...CommandOption) *Command {
	if path == "" {
		path = "claude"
	}
	c := &Command{path: path, timeout: 5 * time.Minute}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCommandModel sets the default model flag.
func WithCommandModel(model string) CommandOption {
	return func(c *Command) { c.model = model }
}

// WithCommandWorkdir sets the working directory for the process.
func WithCommandWorkdir(dir string) CommandOption {
	return func(c *Command) { c.workdir = dir }
}

// WithCommandTimeout bounds each invocation.
func WithCommandTimeout(d time.Duration) CommandOption {
	return func(c *Command) { c.timeout = d }
}

// Complete implements Client.
func (c *Command) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.path, c.buildArgs(req)...)
	if c.workdir != "" {
		cmd.Dir = c.workdir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, NewError("complete", ctx.Err(), errors.Is(ctx.Err(), context.DeadlineExceeded))
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, NewError("complete", fmt.Errorf("%w: %s", err, msg), isTransientOutput(msg))
	}

	return &CompletionResponse{
		Content:      strings.TrimSpace(stdout.String()),
		Model:        req.modelOr(c.model),
		FinishReason: "stop",
		Latency:      time.Since(start),
	}, nil
}

// buildArgs turns a request into CLI flags. The CLI takes a single prompt,
// so user turns are concatenated and assistant turns are inlined as context.
func (c *Command) buildArgs(req CompletionRequest) []string {
	args := []string{"--print"}

	if req.SystemPrompt != "" {
		args = append(args, "--system-prompt", req.SystemPrompt)
	}

	if model := req.modelOr(c.model); model != "" {
		args = append(args, "--model", model)
	}

	var prompt strings.Builder
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleUser:
			prompt.WriteString(msg.Content)
			prompt.WriteString("\n")
		case RoleAssistant:
			if prompt.Len() > 0 {
				prompt.WriteString("\nAssistant: ")
				prompt.WriteString(msg.Content)
				prompt.WriteString("\n\nUser: ")
			}
		}
	}
	if p := strings.TrimSpace(prompt.String()); p != "" {
		args = append(args, "-p", p)
	}
	return args
}

func isTransientOutput(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"rate limit", "timeout", "overloaded", "503", "529"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
