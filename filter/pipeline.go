package filter

import "sync"

// Pipeline is the ordered, insertable/removable registry of filters plus the
// chain construction that runs them.
//
// Registration order is semantically significant: filter 0 is entered first
// (outermost) and exits last. Registration is typically completed at setup
// time; the registry is nevertheless guarded so late registration does not
// race with in-flight invocations, which always operate on a snapshot of the
// lists taken when the chain is built.
type Pipeline struct {
	mu         sync.RWMutex
	invocation []FunctionFilter
	render     []PromptRenderFilter
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddFunctionFilter appends a function filter to the end of the chain.
func (p *Pipeline) AddFunctionFilter(f FunctionFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invocation = append(p.invocation, f)
}

// InsertFunctionFilter inserts a function filter at position pos. Positions
// outside the current range are clamped to the nearest end.
func (p *Pipeline) InsertFunctionFilter(pos int, f FunctionFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invocation = insertAt(p.invocation, pos, f)
}

// RemoveFunctionFilter removes the function filter at position pos, reporting
// whether a filter was removed.
func (p *Pipeline) RemoveFunctionFilter(pos int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 || pos >= len(p.invocation) {
		return false
	}
	p.invocation = append(p.invocation[:pos], p.invocation[pos+1:]...)
	return true
}

// FunctionFilters returns a snapshot of the registered function filters in
// invocation order.
func (p *Pipeline) FunctionFilters() []FunctionFilter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]FunctionFilter, len(p.invocation))
	copy(out, p.invocation)
	return out
}

// AddPromptRenderFilter appends a prompt-render filter to the end of the chain.
func (p *Pipeline) AddPromptRenderFilter(f PromptRenderFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render = append(p.render, f)
}

// InsertPromptRenderFilter inserts a prompt-render filter at position pos.
// Positions outside the current range are clamped to the nearest end.
func (p *Pipeline) InsertPromptRenderFilter(pos int, f PromptRenderFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render = insertAt(p.render, pos, f)
}

// RemovePromptRenderFilter removes the prompt-render filter at position pos,
// reporting whether a filter was removed.
func (p *Pipeline) RemovePromptRenderFilter(pos int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 || pos >= len(p.render) {
		return false
	}
	p.render = append(p.render[:pos], p.render[pos+1:]...)
	return true
}

// PromptRenderFilters returns a snapshot of the registered prompt-render
// filters in invocation order.
func (p *Pipeline) PromptRenderFilters() []PromptRenderFilter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PromptRenderFilter, len(p.render))
	copy(out, p.render)
	return out
}

// RunFunctionChain folds the registered function filters right-to-left around
// terminal and invokes the composed handler with fctx. If no filter
// short-circuits, terminal runs exactly once. Errors propagate up the same
// call stack used on the way in; the chain itself never recovers them.
func (p *Pipeline) RunFunctionChain(fctx *InvocationContext, terminal FunctionHandler) error {
	filters := p.FunctionFilters()
	next := terminal
	for i := len(filters) - 1; i >= 0; i-- {
		f, inner := filters[i], next
		next = func(c *InvocationContext) error {
			return f.OnFunctionInvocation(c, inner)
		}
	}
	return next(fctx)
}

// RunRenderChain is RunFunctionChain's counterpart for the prompt-render
// sub-pipeline over a RenderContext.
func (p *Pipeline) RunRenderChain(rctx *RenderContext, terminal RenderHandler) error {
	filters := p.PromptRenderFilters()
	next := terminal
	for i := len(filters) - 1; i >= 0; i-- {
		f, inner := filters[i], next
		next = func(c *RenderContext) error {
			return f.OnPromptRender(c, inner)
		}
	}
	return next(rctx)
}

func insertAt[T any](list []T, pos int, v T) []T {
	if pos < 0 {
		pos = 0
	}
	if pos > len(list) {
		pos = len(list)
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, list[:pos]...)
	out = append(out, v)
	out = append(out, list[pos:]...)
	return out
}
