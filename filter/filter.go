package filter

// FunctionHandler is the continuation type of the function-filter chain. The
// innermost handler runs the wrapped function; every other handler is a
// filter wrapping the rest of the chain.
type FunctionHandler func(fctx *InvocationContext) error

// FunctionFilter wraps a whole function invocation.
//
// A filter runs logic before calling next (it may inspect or mutate
// fctx.Arguments, or decline to call next at all, preventing the function and
// all later filters from running) and after next returns (it may inspect or
// replace fctx.Result, and may recover an error from next by producing a
// substitute result and returning nil).
//
// Implementations must be safe for concurrent use: the same filter instance
// is entered by every invocation that passes through the pipeline.
type FunctionFilter interface {
	OnFunctionInvocation(fctx *InvocationContext, next FunctionHandler) error
}

// FunctionFilterFunc adapts a plain function to the FunctionFilter interface.
type FunctionFilterFunc func(fctx *InvocationContext, next FunctionHandler) error

// OnFunctionInvocation calls the wrapped function.
func (f FunctionFilterFunc) OnFunctionInvocation(fctx *InvocationContext, next FunctionHandler) error {
	return f(fctx, next)
}

// RenderHandler is the continuation type of the prompt-render chain; the
// innermost handler renders the template into rctx.RenderedPrompt.
type RenderHandler func(rctx *RenderContext) error

// PromptRenderFilter wraps the prompt-render step of a prompt-based function.
// Pre-next logic may inspect or modify arguments; post-next logic may rewrite
// rctx.RenderedPrompt. Either side may call rctx.Cancel to short-circuit the
// entire enclosing invocation.
type PromptRenderFilter interface {
	OnPromptRender(rctx *RenderContext, next RenderHandler) error
}

// PromptRenderFilterFunc adapts a plain function to the PromptRenderFilter interface.
type PromptRenderFilterFunc func(rctx *RenderContext, next RenderHandler) error

// OnPromptRender calls the wrapped function.
func (f PromptRenderFilterFunc) OnPromptRender(rctx *RenderContext, next RenderHandler) error {
	return f(rctx, next)
}
