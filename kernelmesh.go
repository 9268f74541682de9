// Package kernelmesh provides the kernel façade over the function registry
// and the filter-based invocation pipeline. Most applications interact with
// this package by:
//  1. Creating a Kernel via New() (optionally supplying a logger, filters and
//     a concurrency cap)
//  2. Registering plugins of native and prompt-based functions
//  3. Registering function-invocation and prompt-render filters in the order
//     they should wrap each call
//  4. Invoking functions synchronously (Invoke) or as a lazy chunk stream
//     (InvokeStream)
//
// The kernel owns no global state: filters are an explicit ordered list on
// the Kernel instance, and every invocation gets its own context, so
// concurrent invocations against the same Kernel are independent.
package kernelmesh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/kernelmesh/core"
	"github.com/hupe1980/kernelmesh/filter"
	"github.com/hupe1980/kernelmesh/function"
	"github.com/hupe1980/kernelmesh/logging"
)

// Options configures a Kernel instance using the functional options pattern.
type Options struct {
	// MaxConcurrentInvocations limits the number of invocations that can
	// execute simultaneously. Set to 0 for unlimited.
	MaxConcurrentInvocations int

	// Filters is the pipeline holding the ordered filter lists. A fresh empty
	// pipeline is created if nil; supply one to share a pre-built filter
	// configuration across kernels.
	Filters *filter.Pipeline

	// Logger provides structured logging. Defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Kernel orchestrates function invocations: it resolves a function from the
// plugin registry, builds the filter chain around it, and reports the
// outcome (result, canceled, or error) to the caller.
//
// The plugin registry and the filter pipeline are configuration that should
// be completed before invocations start; both are nevertheless guarded for
// thread safety. The Kernel itself holds no per-invocation state.
type Kernel struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin

	filters *filter.Pipeline
	limiter *core.InvocationLimiter
	logger  logging.Logger
}

// New creates a Kernel with optional overrides.
func New(optFns ...func(o *Options)) *Kernel {
	opts := Options{
		Filters: filter.NewPipeline(),
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Filters == nil {
		opts.Filters = filter.NewPipeline()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Kernel{
		plugins: make(map[string]*Plugin),
		filters: opts.Filters,
		limiter: core.NewInvocationLimiter(opts.MaxConcurrentInvocations),
		logger:  opts.Logger,
	}
}

// WithLogger sets the kernel logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithMaxConcurrentInvocations caps concurrently executing invocations.
func WithMaxConcurrentInvocations(max int) func(o *Options) {
	return func(o *Options) { o.MaxConcurrentInvocations = max }
}

// WithFilters supplies a pre-built filter pipeline.
func WithFilters(p *filter.Pipeline) func(o *Options) {
	return func(o *Options) { o.Filters = p }
}

// AddPlugin registers a plugin, replacing any plugin with the same name.
func (k *Kernel) AddPlugin(p *Plugin) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.plugins[p.Name()] = p
}

// AddFunction registers a single function under the named plugin, creating
// the plugin if needed.
func (k *Kernel) AddFunction(plugin string, fn function.Function) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.plugins[plugin]
	if !ok {
		p = NewPlugin(plugin)
		k.plugins[plugin] = p
	}
	p.Add(fn)
}

// Plugin retrieves a registered plugin by name.
func (k *Kernel) Plugin(name string) (*Plugin, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	p, ok := k.plugins[name]
	return p, ok
}

// Function resolves a function by plugin namespace and function name.
func (k *Kernel) Function(plugin, name string) (function.Function, bool) {
	p, ok := k.Plugin(plugin)
	if !ok {
		return nil, false
	}
	return p.Function(name)
}

// Filters exposes the filter pipeline for registration. Order of registration
// is the invocation order (outermost first).
func (k *Kernel) Filters() *filter.Pipeline { return k.filters }

// Invoke executes one function call through the filter pipeline.
//
// Outcomes:
//   - success: the function's (possibly filter-replaced) Result, nil error
//   - canceled: a Result with Canceled == true and no value, nil error —
//     a filter declined to call its continuation, or a render filter set the
//     cancel flag
//   - failure: nil Result and whatever error escaped the chain, unchanged
//     unless a filter chose to transform it
func (k *Kernel) Invoke(ctx context.Context, plugin, name string, args core.Arguments) (*core.Result, error) {
	fn, ok := k.Function(plugin, name)
	if !ok {
		return nil, fmt.Errorf("function %s.%s not found", plugin, name)
	}

	if err := k.limiter.Acquire(); err != nil {
		return nil, err
	}
	defer k.limiter.Release()

	invocationID := uuid.NewString()
	fctx := filter.NewInvocationContext(ctx, invocationID, plugin, fn, args, k.logger)

	k.logger.Debug("kernel.invoke.start", "plugin", plugin, "function", name, "invocation_id", invocationID)
	start := time.Now()

	if err := k.filters.RunFunctionChain(fctx, k.invokeTerminal); err != nil {
		k.logger.Error("kernel.invoke.error", "plugin", plugin, "function", name, "error", err.Error())
		return nil, err
	}

	if fctx.Result == nil {
		k.logger.Info("kernel.invoke.canceled", "plugin", plugin, "function", name, "invocation_id", invocationID)
		return core.CanceledResult(), nil
	}

	k.logger.Info("kernel.invoke.success", "plugin", plugin, "function", name, "duration_ms", time.Since(start).Milliseconds())
	return fctx.Result, nil
}

// InvokeStream executes one streaming function call through the filter
// pipeline, returning a lazy single-pass chunk sequence.
//
// Setup failures (unknown function, a filter error before the stream starts)
// are returned as the immediate error. A pre-first-element cancellation
// yields closed, empty channels and a nil error. Cancellation of ctx
// mid-stream ends the sequence early without an error element.
func (k *Kernel) InvokeStream(ctx context.Context, plugin, name string, args core.Arguments) (<-chan core.Chunk, <-chan error, error) {
	fn, ok := k.Function(plugin, name)
	if !ok {
		return nil, nil, fmt.Errorf("function %s.%s not found", plugin, name)
	}

	if err := k.limiter.Acquire(); err != nil {
		return nil, nil, err
	}

	invocationID := uuid.NewString()
	fctx := filter.NewInvocationContext(ctx, invocationID, plugin, fn, args, k.logger)
	fctx.Streaming = true

	k.logger.Debug("kernel.invoke_stream.start", "plugin", plugin, "function", name, "invocation_id", invocationID)

	if err := k.filters.RunFunctionChain(fctx, k.streamTerminal); err != nil {
		k.limiter.Release()
		k.logger.Error("kernel.invoke_stream.error", "plugin", plugin, "function", name, "error", err.Error())
		return nil, nil, err
	}

	out := make(chan core.Chunk, 32)
	errOut := make(chan error, 1)

	if fctx.Stream == nil {
		// Short-circuited before the first element: zero elements, no error.
		k.limiter.Release()
		k.logger.Info("kernel.invoke_stream.canceled", "plugin", plugin, "function", name, "invocation_id", invocationID)
		close(out)
		close(errOut)
		return out, errOut, nil
	}

	go k.pipeStream(ctx, fctx, out, errOut)

	return out, errOut, nil
}

// pipeStream forwards chunks from the invocation's stream to the caller,
// releasing the concurrency slot when the stream drains.
func (k *Kernel) pipeStream(ctx context.Context, fctx *filter.InvocationContext, out chan<- core.Chunk, errOut chan<- error) {
	defer k.limiter.Release()
	defer close(out)
	defer close(errOut)

	src, srcErr := fctx.Stream, fctx.StreamErr
	for src != nil || srcErr != nil {
		select {
		case <-ctx.Done():
			return

		case c, ok := <-src:
			if !ok {
				src = nil
				continue
			}
			select {
			case <-ctx.Done():
				return
			case out <- c:
			}

		case err, ok := <-srcErr:
			if !ok {
				srcErr = nil
				continue
			}
			if err != nil {
				select {
				case <-ctx.Done():
				case errOut <- err:
				}
				return
			}
		}
	}
}

// invokeTerminal is the innermost link of the single-shot chain: run the
// function. For prompt-backed functions the render step runs first, wrapped
// in the prompt-render sub-pipeline, and the (possibly rewritten) prompt is
// what reaches the model.
func (k *Kernel) invokeTerminal(fctx *filter.InvocationContext) error {
	pf, ok := fctx.Function.(function.PromptBacked)
	if !ok {
		result, err := fctx.Function.Invoke(fctx.Context, fctx.Arguments)
		if err != nil {
			return err
		}
		fctx.Result = result
		return nil
	}

	prompt, canceled, err := k.renderPrompt(fctx, pf)
	if err != nil {
		return err
	}
	if canceled {
		return nil
	}

	result, err := pf.InvokeRendered(fctx.Context, prompt)
	if err != nil {
		return err
	}
	fctx.Result = result
	return nil
}

// streamTerminal is the innermost link of the streaming chain: start the
// chunk stream and attach it to the context so the kernel (and observing
// filters) can see that production began.
func (k *Kernel) streamTerminal(fctx *filter.InvocationContext) error {
	pf, ok := fctx.Function.(function.PromptBacked)
	if !ok {
		fctx.Stream, fctx.StreamErr = fctx.Function.InvokeStream(fctx.Context, fctx.Arguments)
		return nil
	}

	prompt, canceled, err := k.renderPrompt(fctx, pf)
	if err != nil {
		return err
	}
	if canceled {
		return nil
	}

	fctx.Stream, fctx.StreamErr = pf.InvokeRenderedStream(fctx.Context, prompt)
	return nil
}

// renderPrompt runs the prompt-render sub-pipeline. The render context shares
// the invocation's Arguments map, so mutations made by render filters remain
// visible to function filters afterwards. Cancellation is reported when a
// render filter set the cancel flag or skipped the renderer entirely.
func (k *Kernel) renderPrompt(fctx *filter.InvocationContext, pf function.PromptBacked) (string, bool, error) {
	rctx := filter.NewRenderContext(fctx.Context, fctx.Plugin, fctx.Function, fctx.Arguments)

	rendered := false
	err := k.filters.RunRenderChain(rctx, func(rc *filter.RenderContext) error {
		prompt, err := pf.Render(rc.Context, rc.Arguments)
		if err != nil {
			return err
		}
		rc.RenderedPrompt = prompt
		rendered = true
		return nil
	})
	if err != nil {
		return "", false, err
	}

	if rctx.IsCanceled() || !rendered {
		k.logger.Debug("kernel.render.canceled", "plugin", fctx.Plugin, "function", fctx.Function.Name(), "invocation_id", fctx.InvocationID)
		return "", true, nil
	}

	return rctx.RenderedPrompt, false, nil
}
