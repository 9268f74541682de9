package kernelmesh

import (
	"sync"

	"github.com/hupe1980/kernelmesh/function"
)

// Plugin is a named collection of functions. The plugin name is the namespace
// half of a function's identity: two plugins may each register a function
// called "summarize" without collision.
type Plugin struct {
	name        string
	description string

	mu        sync.RWMutex
	functions map[string]function.Function
	order     []string
}

// NewPlugin creates a plugin and registers the given functions.
func NewPlugin(name string, fns ...function.Function) *Plugin {
	p := &Plugin{
		name:      name,
		functions: make(map[string]function.Function),
	}
	for _, fn := range fns {
		p.Add(fn)
	}
	return p
}

// Name returns the plugin namespace.
func (p *Plugin) Name() string { return p.name }

// Description returns the plugin description.
func (p *Plugin) Description() string { return p.description }

// WithDescription sets the plugin description and returns the plugin for chaining.
func (p *Plugin) WithDescription(d string) *Plugin {
	p.description = d
	return p
}

// Add registers a function under its own name. A function with the same name
// replaces the previous registration without warning, mirroring how plugin
// reloading is expected to work.
func (p *Plugin) Add(fn function.Function) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.functions[fn.Name()]; !exists {
		p.order = append(p.order, fn.Name())
	}
	p.functions[fn.Name()] = fn
}

// Function retrieves a registered function by name.
func (p *Plugin) Function(name string) (function.Function, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn, ok := p.functions[name]
	return fn, ok
}

// Functions returns the registered functions in registration order.
func (p *Plugin) Functions() []function.Function {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]function.Function, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.functions[name])
	}
	return out
}
