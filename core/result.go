package core

import "fmt"

// Metadata keys attached to results produced by prompt-based functions.
const (
	// MetadataModel records the provider model identifier that produced the value.
	MetadataModel = "model"
	// MetadataFinishReason records the provider finish reason ("stop", "length", ...).
	MetadataFinishReason = "finish_reason"
	// MetadataRenderedPrompt records the prompt text actually sent to the model,
	// after any post-render filter rewrites.
	MetadataRenderedPrompt = "rendered_prompt"
)

// TokenUsage captures token accounting for a model call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the outcome of a function invocation: the output value plus
// provenance metadata attached after the wrapped call completes.
//
// A canceled invocation (a filter declined to call its continuation) is
// reported as a Result with Canceled == true and no Value. This keeps the
// canceled outcome distinguishable from both success and failure without
// overloading the error return.
type Result struct {
	// Value is the output produced by the function. Nil until the wrapped
	// call completes, and nil on a canceled outcome.
	Value any `json:"value"`

	// Metadata carries provenance (model id, finish reason, rendered prompt).
	Metadata map[string]any `json:"metadata,omitempty"`

	// Usage holds token accounting when the function involved a model call.
	Usage *TokenUsage `json:"usage,omitempty"`

	// Canceled reports that a filter short-circuited the invocation before
	// the function ran.
	Canceled bool `json:"canceled,omitempty"`
}

// NewResult constructs a successful Result with empty metadata.
func NewResult(value any) *Result {
	return &Result{Value: value, Metadata: map[string]any{}}
}

// CanceledResult constructs the canceled-outcome Result.
func CanceledResult() *Result { return &Result{Canceled: true} }

// String renders the value with fmt; the canceled outcome renders empty.
func (r *Result) String() string {
	if r == nil || r.Value == nil {
		return ""
	}
	if s, ok := r.Value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", r.Value)
}

// SetMetadata stores a provenance entry, allocating the map on first use.
func (r *Result) SetMetadata(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	r.Metadata[key] = value
}

// Chunk is one element of a streaming invocation. Chunks are produced in a
// single pass over the underlying provider stream and are not restartable.
type Chunk struct {
	// Text is the partial output carried by this element.
	Text string `json:"text"`

	// Final marks the last element of the stream. A final chunk may carry
	// the finish reason and usage when the provider reports them.
	Final        bool        `json:"final,omitempty"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}
