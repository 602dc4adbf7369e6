package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"golang.org/x/net/html"

	"github.com/atom122158003/pandyle/internal/dom"
	"github.com/atom122158003/pandyle/internal/expr"
	"github.com/atom122158003/pandyle/internal/extension"
	"github.com/atom122158003/pandyle/internal/relation"
	"github.com/atom122158003/pandyle/internal/scope"
	"github.com/atom122158003/pandyle/internal/store"
	"github.com/atom122158003/pandyle/internal/value"
)

// DefaultComponentTag is the element name of component placeholders.
const DefaultComponentTag = "c"

// ComponentLoader fills a component placeholder node with its content.
// Load blocks until the node is ready; it is the only point where a render
// pass waits on something outside the engine.
type ComponentLoader interface {
	Load(ctx context.Context, n *html.Node) error
}

// ComponentLoaderFunc adapts a function to ComponentLoader.
type ComponentLoaderFunc func(ctx context.Context, n *html.Node) error

// Load calls f.
func (f ComponentLoaderFunc) Load(ctx context.Context, n *html.Node) error {
	return f(ctx, n)
}

// Engine binds one data tree to one node tree.
type Engine struct {
	root      *html.Node
	store     *store.Store
	relations *relation.Registry
	ext       *extension.Registry
	globalExt *extension.Registry
	global    any

	loader       ComponentLoader
	componentTag string

	passGen PassTokenGenerator
	pass    string
	clock   Counter

	states       map[*html.Node]*nodeState
	defaultAlias scope.Map
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoader sets the component loader. Without one, placeholders are
// rendered like any other element.
func WithLoader(l ComponentLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithGlobal sets the global object exposed as @window and consulted last
// when resolving call targets.
func WithGlobal(g any) Option {
	return func(e *Engine) {
		e.global = g
	}
}

// WithComponentTag changes the placeholder element name (default "c").
func WithComponentTag(tag string) Option {
	return func(e *Engine) {
		e.componentTag = tag
	}
}

// WithPassTokenGenerator sets the generator for log correlation tokens.
//
// Default: UUIDv7Generator.
func WithPassTokenGenerator(g PassTokenGenerator) Option {
	return func(e *Engine) {
		e.passGen = g
	}
}

// WithExtensions sets the engine's own extension registry.
func WithExtensions(r *extension.Registry) Option {
	return func(e *Engine) {
		e.ext = r
	}
}

// WithGlobalExtensions replaces the process-wide registry consulted after
// the engine's own methods (default extension.Global).
func WithGlobalExtensions(r *extension.Registry) Option {
	return func(e *Engine) {
		e.globalExt = r
	}
}

// WithClock sets the render counter.
func WithClock(c Counter) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine binding data to the tree under root. Nothing is
// rendered until Run.
func New(root *html.Node, data any, opts ...Option) *Engine {
	e := &Engine{
		root:         root,
		store:        store.New(data),
		relations:    relation.NewRegistry(),
		ext:          extension.NewRegistry(),
		globalExt:    extension.Global,
		componentTag: DefaultComponentTag,
		passGen:      UUIDv7Generator{},
		clock:        NewClock(),
		states:       make(map[*html.Node]*nodeState),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.defaultAlias = scope.Defaults(e.store.Root(), e.global)
	return e
}

// Bind creates an Engine and runs the first render pass.
func Bind(ctx context.Context, root *html.Node, data any, opts ...Option) (*Engine, error) {
	e := New(root, data, opts...)
	if err := e.Run(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Run renders the whole tree from the store root.
func (e *Engine) Run(ctx context.Context) error {
	e.startPass("run")
	before := e.clock.Current()
	err := e.renderSingle(ctx, e.root, e.store.Root(), "", e.defaultAlias.Clone())
	slog.Debug("render pass complete",
		"pass", e.pass,
		"renders", e.clock.Current()-before,
		"relations", e.relations.Len(),
	)
	return err
}

// Render renders nodes with the given data, parent path and inherited
// aliases. Each node receives its own copy of alias.
func (e *Engine) Render(ctx context.Context, nodes []*html.Node, data any, parentPath string, alias scope.Map) error {
	e.startPass("render")
	for _, n := range nodes {
		if err := e.renderSingle(ctx, n, data, parentPath, alias.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Set writes each path → value pair through the store and re-renders the
// affected elements. Keys are applied in sorted order; numeric dotted
// segments are read as indices (items.0 is items[0]).
func (e *Engine) Set(ctx context.Context, changes map[string]any) error {
	e.startPass("set")
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, err := store.Canonical(k)
		if err != nil {
			return fmt.Errorf("set %q: %w", k, err)
		}
		v := changes[k]
		if err := e.store.Write(path, v); err != nil {
			return fmt.Errorf("set %q: %w", k, err)
		}
		if value.IsSequence(v) {
			if dropped := e.relations.PruneDescendants(path); len(dropped) > 0 {
				slog.Debug("relations pruned", "pass", e.pass, "path", path, "dropped", dropped)
			}
		}
		rel, ok := e.relations.Match(path)
		if !ok {
			slog.Debug("write has no dependents", "pass", e.pass, "path", path)
			continue
		}
		slog.Debug("write dispatch", "pass", e.pass, "path", path, "relation", rel.Path, "elements", len(rel.Elements))
		for _, n := range slices.Clone(rel.Elements) {
			st, ok := e.states[n]
			if !ok {
				continue
			}
			if err := e.renderSingle(ctx, n, st.context, st.parentPath, st.alias); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get resolves spec against the store root. spec may be a path, a slice of
// specs, or a mapping from names to paths. Anything else yields nil.
func (e *Engine) Get(spec any) (any, error) {
	r := e.resolver(e.defaultAlias)
	root := e.store.Root()
	switch s := spec.(type) {
	case string:
		return r.Value(s, root)
	case []string:
		out := make([]any, len(s))
		for i, p := range s {
			v, err := r.Value(p, root)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case []any:
		out := make([]any, len(s))
		for i, item := range s {
			v, err := e.Get(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(s))
		for name, p := range s {
			v, err := r.Value(p, root)
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(s))
		for name, p := range s {
			path, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("get %q: path must be a string, got %T", name, p)
			}
			v, err := r.Value(path, root)
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
		return out, nil
	}
	return nil, nil
}

// Register routes a named extension by kind and suffix; see
// extension.Registry.Register.
func (e *Engine) Register(name string, v any) error {
	return e.ext.Register(name, v)
}

// RegisterMethod registers a method callable from expressions.
func (e *Engine) RegisterMethod(name string, fn any) error {
	return e.ext.AddMethod(name, fn)
}

// RegisterFilter registers a filter.
func (e *Engine) RegisterFilter(name string, fn any) error {
	return e.ext.AddFilter(name, fn)
}

// RegisterConverter registers a converter for p-context pipes.
func (e *Engine) RegisterConverter(name string, fn any) error {
	return e.ext.AddConverter(name, fn)
}

// Root returns the bound node tree.
func (e *Engine) Root() *html.Node {
	return e.root
}

// Data returns the current store root.
func (e *Engine) Data() any {
	return e.store.Root()
}

// Relations returns the relation registry.
func (e *Engine) Relations() *relation.Registry {
	return e.relations
}

// Renders returns the number of node renders so far.
func (e *Engine) Renders() int64 {
	return e.clock.Current()
}

// HTML returns the rendered markup of the root's children.
func (e *Engine) HTML() (string, error) {
	return dom.InnerHTML(e.root)
}

func (e *Engine) startPass(kind string) {
	e.pass = e.passGen.Generate()
	slog.Debug("pass start", "pass", e.pass, "kind", kind)
}

func (e *Engine) resolver(aliases scope.Map) expr.Resolver {
	return expr.Resolver{
		Aliases: aliases,
		Methods: e.ext.Method,
		Globals: e.globalExt.Method,
		Window:  e.global,
	}
}
