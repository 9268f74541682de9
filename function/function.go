// Package function implements the callable units orchestrated by the kernel:
// native Go functions with schema validated arguments and prompt-based
// functions backed by a chat service. Both variants are immutable after
// construction and safe for concurrent invocation; per-call state lives in
// the filter contexts, never on the function itself.
package function

import (
	"context"
	"fmt"

	"github.com/hupe1980/kernelmesh/core"
)

// Function is a named, described, callable unit of work. Implementations must
// be side-effect free with respect to their own fields: a Function is
// registered once and invoked many times, possibly concurrently.
type Function interface {
	// Name returns the unique identifier for this function within its plugin.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this function
	// does, exposed to models and hosting applications.
	Description() string

	// Invoke executes the function once and returns its result. This is the
	// raw underlying call; filter orchestration happens in the kernel.
	Invoke(ctx context.Context, args core.Arguments) (*core.Result, error)

	// InvokeStream executes the function producing a lazy, single-pass chunk
	// sequence. Implementations close both channels when done; errors are
	// reported on the error channel.
	InvokeStream(ctx context.Context, args core.Arguments) (<-chan core.Chunk, <-chan error)
}

// PromptBacked is implemented by prompt-based functions. The kernel uses it
// to split the invocation into the render step (wrapped by prompt-render
// filters) and the model call, so that post-render rewrites of the prompt are
// what actually reach the service.
type PromptBacked interface {
	Function

	// Render produces the prompt text from the arguments without calling the
	// model.
	Render(ctx context.Context, args core.Arguments) (string, error)

	// InvokeRendered sends an already rendered prompt to the backing service.
	InvokeRendered(ctx context.Context, prompt string) (*core.Result, error)

	// InvokeRenderedStream is the streaming counterpart of InvokeRendered.
	InvokeRenderedStream(ctx context.Context, prompt string) (<-chan core.Chunk, <-chan error)
}

// Error codes used by FunctionError.
const (
	// CodeValidation signals a schema / argument mismatch.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution signals that the underlying callback returned an error.
	CodeExecution = "EXECUTION_ERROR"
	// CodeRender signals a template rendering failure.
	CodeRender = "RENDER_ERROR"
	// CodeModel signals a backing service failure.
	CodeModel = "MODEL_ERROR"
)

// FunctionError represents errors that occur during function execution.
type FunctionError struct {
	Function string `json:"function"`          // Name of the function that failed
	Message  string `json:"message"`           // Error message
	Code     string `json:"code"`              // Error code for categorization
	Details  any    `json:"details,omitempty"` // Additional error details
}

func (e *FunctionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("function error [%s] in %s: %s", e.Code, e.Function, e.Message)
	}
	return fmt.Sprintf("function error in %s: %s", e.Function, e.Message)
}

// NewFunctionError creates a new FunctionError with the specified details.
func NewFunctionError(function, message, code string) *FunctionError {
	return &FunctionError{
		Function: function,
		Message:  message,
		Code:     code,
	}
}
