// Package template implements the minimal prompt template format used by
// prompt-based functions: plain text with variable blocks of the form
// {{$name}}. Rendering substitutes variables from the invocation arguments,
// falling back to configured defaults. Richer template engines (Handlebars
// and friends) are intentionally out of scope; callers needing them should
// render externally and register the result as a plain prompt.
package template

import (
	"fmt"
	"strings"
)

// Template is a parsed prompt template. Immutable after Parse; safe for
// concurrent rendering.
type Template struct {
	source string
	nodes  []node
}

// node is either literal text or a variable reference.
type node struct {
	text     string
	variable string
}

// Parse scans source into a Template. Variable blocks use the form
// {{$name}}; surrounding whitespace inside the block is ignored. Any block
// that is not a variable reference is rejected.
func Parse(source string) (*Template, error) {
	var nodes []node
	rest := source
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		closing := strings.Index(rest[open:], "}}")
		if closing < 0 {
			return nil, fmt.Errorf("template: unterminated block at offset %d", len(source)-len(rest)+open)
		}
		if open > 0 {
			nodes = append(nodes, node{text: rest[:open]})
		}
		body := strings.TrimSpace(rest[open+2 : open+closing])
		if !strings.HasPrefix(body, "$") || len(body) < 2 {
			return nil, fmt.Errorf("template: unsupported block {{%s}}, only variable blocks ({{$name}}) are supported", body)
		}
		name := body[1:]
		if !validIdentifier(name) {
			return nil, fmt.Errorf("template: invalid variable name %q", name)
		}
		nodes = append(nodes, node{variable: name})
		rest = rest[open+closing+2:]
	}
	if rest != "" {
		nodes = append(nodes, node{text: rest})
	}
	return &Template{source: source, nodes: nodes}, nil
}

// MustParse is Parse that panics on error, for templates known at compile time.
func MustParse(source string) *Template {
	t, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the original template text.
func (t *Template) Source() string { return t.source }

// Variables returns the distinct variable names referenced by the template,
// in first-appearance order.
func (t *Template) Variables() []string {
	seen := map[string]bool{}
	var names []string
	for _, n := range t.nodes {
		if n.variable == "" || seen[n.variable] {
			continue
		}
		seen[n.variable] = true
		names = append(names, n.variable)
	}
	return names
}

// Render substitutes variables from values. Missing variables render as the
// empty string; values are stringified with fmt.
func (t *Template) Render(values map[string]any) string {
	var b strings.Builder
	for _, n := range t.nodes {
		if n.variable == "" {
			b.WriteString(n.text)
			continue
		}
		v, ok := values[n.variable]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr {
			b.WriteString(s)
			continue
		}
		fmt.Fprintf(&b, "%v", v)
	}
	return b.String()
}

func validIdentifier(name string) bool {
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return name != ""
}
