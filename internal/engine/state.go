package engine

import (
	"golang.org/x/net/html"

	"github.com/atom122158003/pandyle/internal/dom"
	"github.com/atom122158003/pandyle/internal/scope"
)

// Binding keys that are not written back as attributes.
const (
	bindingText = "text"
	bindingIf   = "if"
)

// binding is a captured pattern for one attribute (or text / if).
type binding struct {
	pattern  string
	resolved bool
}

// nodeState is what the engine remembers about one node.
type nodeState struct {
	context    any
	parentPath string
	alias      scope.Map

	bindings map[string]*binding
	order    []string // binding names in capture order

	template    []*html.Node // p-each: pristine element children
	hasTemplate bool

	loaded bool // component placeholder already filled
}

// stateOf returns the state for n, creating it with data as context on
// first sight.
func (e *Engine) stateOf(n *html.Node, data any) *nodeState {
	st, ok := e.states[n]
	if !ok {
		st = &nodeState{context: data, bindings: make(map[string]*binding)}
		e.states[n] = st
	}
	return st
}

// capture stores pattern for name unless one is already held.
func (st *nodeState) capture(name, pattern string) *binding {
	if b, ok := st.bindings[name]; ok {
		return b
	}
	b := &binding{pattern: pattern}
	st.bindings[name] = b
	st.order = append(st.order, name)
	return b
}

// replace stores pattern for name, resetting its resolved flag. Used when a
// raw directive attribute is parsed.
func (st *nodeState) replace(name, pattern string) {
	if b, ok := st.bindings[name]; ok {
		b.pattern = pattern
		b.resolved = false
		return
	}
	st.capture(name, pattern)
}

// dispose forgets every node under the given subtrees.
func (e *Engine) dispose(nodes []*html.Node) {
	for _, n := range nodes {
		dom.Walk(n, func(d *html.Node) {
			if _, ok := e.states[d]; ok {
				delete(e.states, d)
				e.relations.Forget(d)
			}
		})
	}
}
