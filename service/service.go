// Package service defines the chat-completion service abstraction consumed by
// prompt-based functions, plus a deterministic in-memory implementation for
// tests and examples. Vendor adapters live in the openai and anthropic
// subpackages; the invocation pipeline treats all of them as opaque
// collaborators behind the ChatService interface.
package service

import (
	"context"
	"fmt"

	"github.com/hupe1980/kernelmesh/core"
)

// Request captures the normalized input for a single prompt completion.
// Prompt is the fully rendered prompt text (after any post-render filter
// rewrites); the pipeline never sends the raw template.
type Request struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Stream      bool    `json:"stream,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"max_tokens,omitempty"`
}

// Response is a (partial or final) chunk emitted by a streaming service.
type Response struct {
	Partial      bool             `json:"partial"`
	Text         string           `json:"text"`
	FinishReason string           `json:"finish_reason,omitempty"` // "stop", "length", etc.
	Usage        *core.TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a service implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// ChatService is the minimal interface required by prompt functions to drive
// generation. Implementations emit zero or more partial responses followed by
// exactly one final response (Partial == false), then close both channels.
// Errors are reported on the error channel; a cancellation of ctx ends the
// stream early without a final response.
type ChatService interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the service implementation.
	Info() Info
}

// MockService is a lightweight in-memory ChatService useful for tests &
// examples. Canned completions are matched by exact prompt text; unmatched
// prompts echo a deterministic fallback.
type MockService struct {
	info      Info
	responses map[string]string
	failWith  error
}

// NewMockService constructs a MockService.
func NewMockService() *MockService {
	return &MockService{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockService) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every Generate call report err instead of a completion.
func (m *MockService) FailWith(err error) { m.failWith = err }

// Generate implements ChatService; emits optional streaming char chunks then
// the final response with estimated usage.
func (m *MockService) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)
		if m.failWith != nil {
			errCh <- m.failWith
			return
		}
		full, ok := m.responses[req.Prompt]
		if !ok {
			full = fmt.Sprintf("Mock response to: %s", req.Prompt)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}
		select {
		case <-ctx.Done():
		case respCh <- Response{
			Partial:      false,
			Text:         full,
			FinishReason: "stop",
			Usage:        EstimateUsage(req.Model, req.Prompt, full),
		}:
		}
	}()

	return respCh, errCh
}

// Info implements ChatService.
func (m *MockService) Info() Info { return m.info }
