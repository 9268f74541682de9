package filter

import (
	"context"

	"github.com/hupe1980/kernelmesh/core"
	"github.com/hupe1980/kernelmesh/function"
	"github.com/hupe1980/kernelmesh/logging"
)

// InvocationContext is the mutable per-call state threaded through the
// function-filter chain. Exactly one InvocationContext exists per call; it is
// created at invocation start, mutated by each filter in sequence, and must
// not be retained or mutated by a filter after the invocation completes.
// Concurrent invocations of the same function each get an independent
// context.
type InvocationContext struct {
	// Context is the ambient cancellation context supplied by the caller. The
	// pipeline passes it through to the wrapped call without adding policy.
	Context context.Context

	// InvocationID uniquely identifies this call.
	InvocationID string

	// Plugin is the namespace the function was registered under.
	Plugin string

	// Function is the immutable callable unit being invoked.
	Function function.Function

	// Arguments is the named input mapping. Filters may mutate it before
	// calling next; the same map instance is shared with the prompt-render
	// step.
	Arguments core.Arguments

	// Result holds the in-progress or final result. Nil until the wrapped
	// call completes; a post-next filter may replace it entirely, and
	// earlier-registered filters then observe the replacement.
	Result *core.Result

	// Streaming reports that this is a streaming invocation. In streaming
	// mode the terminal action assigns Stream/StreamErr before the innermost
	// next returns; filters observe stream start and may short-circuit, but
	// they do not rewrite individual chunks.
	Streaming bool

	// Stream carries the lazy chunk sequence of a streaming invocation.
	Stream <-chan core.Chunk

	// StreamErr carries terminal errors of a streaming invocation.
	StreamErr <-chan error

	// Logger is the invocation-scoped logger.
	Logger logging.Logger
}

// NewInvocationContext constructs the context for one invocation.
func NewInvocationContext(
	ctx context.Context,
	invocationID, plugin string,
	fn function.Function,
	args core.Arguments,
	logger logging.Logger,
) *InvocationContext {
	if args == nil {
		args = core.NewArguments()
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &InvocationContext{
		Context:      ctx,
		InvocationID: invocationID,
		Plugin:       plugin,
		Function:     fn,
		Arguments:    args,
		Logger:       logger,
	}
}

// Done mirrors context.Context's Done.
func (ic *InvocationContext) Done() <-chan struct{} { return ic.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (ic *InvocationContext) Err() error { return ic.Context.Err() }

// RenderContext is the narrower mutable state threaded through the
// prompt-render-filter chain of a prompt-based function. It shares the
// Arguments map with the enclosing InvocationContext, so argument mutations
// made during rendering are visible to later function filters and vice versa.
type RenderContext struct {
	// Context is the ambient cancellation context of the enclosing invocation.
	Context context.Context

	// Plugin and Function identify the prompt function being rendered.
	Plugin   string
	Function function.Function

	// Arguments is the shared input mapping of the enclosing invocation.
	Arguments core.Arguments

	// RenderedPrompt is empty until the renderer runs, then readable and
	// overwritable by post-render filters. The final value, not the naive
	// rendering, is what reaches the model.
	RenderedPrompt string

	canceled bool
}

// NewRenderContext constructs the context for one render step.
func NewRenderContext(ctx context.Context, plugin string, fn function.Function, args core.Arguments) *RenderContext {
	if args == nil {
		args = core.NewArguments()
	}
	return &RenderContext{
		Context:   ctx,
		Plugin:    plugin,
		Function:  fn,
		Arguments: args,
	}
}

// Cancel flags the enclosing invocation for cancellation. The kernel consults
// the flag after the render chain returns and short-circuits the whole call
// to a canceled outcome, not just the render step. Skipping next inside a
// render filter has the same effect.
func (rc *RenderContext) Cancel() { rc.canceled = true }

// IsCanceled reports whether a render filter requested cancellation.
func (rc *RenderContext) IsCanceled() bool { return rc.canceled }
