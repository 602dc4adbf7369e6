// Package relation tracks which nodes depend on which data paths.
//
// A Relation binds one normalized absolute path to the nodes whose output
// was produced from it. At most one Relation exists per path and a node is
// listed at most once per Relation. Relations keep their creation order:
// write dispatch picks the first match.
package relation

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Relation is the set of nodes depending on Path.
type Relation struct {
	Path     string
	Elements []*html.Node
}

// Registry holds relations in creation order.
type Registry struct {
	relations []*Relation
	byPath    map[string]*Relation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string]*Relation)}
}

// Key normalizes a path for use as a registry key.
func Key(path string) string {
	return norm.NFC.String(strings.TrimPrefix(path, "."))
}

// Register records that n depends on path. It reports whether anything
// changed.
func (r *Registry) Register(path string, n *html.Node) bool {
	key := Key(path)
	rel, ok := r.byPath[key]
	if !ok {
		rel = &Relation{Path: key, Elements: []*html.Node{n}}
		r.relations = append(r.relations, rel)
		r.byPath[key] = rel
		return true
	}
	if slices.Contains(rel.Elements, n) {
		return false
	}
	rel.Elements = append(rel.Elements, n)
	return true
}

// PruneDescendants drops every relation whose path is a strict descendant
// of path and returns the dropped paths.
func (r *Registry) PruneDescendants(path string) []string {
	key := Key(path)
	var dropped []string
	r.relations = slices.DeleteFunc(r.relations, func(rel *Relation) bool {
		if !IsChild(key, rel.Path) {
			return false
		}
		delete(r.byPath, rel.Path)
		dropped = append(dropped, rel.Path)
		return true
	})
	return dropped
}

// Match returns the first relation whose path is path itself or one of its
// descendants.
func (r *Registry) Match(path string) (*Relation, bool) {
	key := Key(path)
	for _, rel := range r.relations {
		if IsSelfOrChild(key, rel.Path) {
			return rel, true
		}
	}
	return nil, false
}

// Lookup returns the relation registered for exactly path.
func (r *Registry) Lookup(path string) (*Relation, bool) {
	rel, ok := r.byPath[Key(path)]
	return rel, ok
}

// Forget removes n from every relation. Relations left without elements
// are dropped.
func (r *Registry) Forget(n *html.Node) {
	r.relations = slices.DeleteFunc(r.relations, func(rel *Relation) bool {
		rel.Elements = slices.DeleteFunc(rel.Elements, func(e *html.Node) bool { return e == n })
		if len(rel.Elements) > 0 {
			return false
		}
		delete(r.byPath, rel.Path)
		return true
	})
}

// Paths returns every registered path in creation order.
func (r *Registry) Paths() []string {
	out := make([]string, len(r.relations))
	for i, rel := range r.relations {
		out[i] = rel.Path
	}
	return out
}

// Len returns the number of relations.
func (r *Registry) Len() int {
	return len(r.relations)
}

// IsSelfOrChild reports whether sub is parent or lies below it.
func IsSelfOrChild(parent, sub string) bool {
	return sub == parent || IsChild(parent, sub)
}

// IsChild reports whether sub lies strictly below parent: it starts with
// parent followed by '.' or '['.
func IsChild(parent, sub string) bool {
	if len(sub) <= len(parent)+1 || !strings.HasPrefix(sub, parent) {
		return false
	}
	c := sub[len(parent)]
	return c == '.' || c == '['
}
