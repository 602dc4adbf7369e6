package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/atom122158003/pandyle/internal/dom"
	"github.com/atom122158003/pandyle/internal/expr"
	"github.com/atom122158003/pandyle/internal/scope"
	"github.com/atom122158003/pandyle/internal/value"
)

// Directive attributes.
const (
	attrBind    = "p-bind"
	attrIf      = "p-if"
	attrContext = "p-context"
	attrEach    = "p-each"
	attrAs      = "p-as"
)

func (e *Engine) renderSingle(ctx context.Context, n *html.Node, data any, parentPath string, alias scope.Map) error {
	if !dom.IsElement(n) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	seq := e.clock.Next()

	st := e.stateOf(n, data)
	if alias != nil {
		st.alias = alias
	} else if st.alias == nil {
		st.alias = scope.Map{}
	}
	st.parentPath = parentPath
	data = st.context

	slog.Debug("render node", "pass", e.pass, "seq", seq, "tag", n.Data, "path", parentPath)

	if err := e.bindAttr(n, st, parentPath); err != nil {
		return wrapRender(n.Data, DirectiveBind, parentPath, err)
	}
	if err := e.bindIf(n, st, parentPath); err != nil {
		return wrapRender(n.Data, DirectiveIf, parentPath, err)
	}
	if e.loader != nil && n.Data == e.componentTag && !st.loaded {
		if err := e.loader.Load(ctx, n); err != nil {
			return wrapRender(n.Data, DirectiveComponent, parentPath, err)
		}
		st.loaded = true
	}

	if v, _ := dom.Attr(n, attrContext); v != "" {
		return wrapRender(n.Data, DirectiveContext, parentPath, e.renderContext(ctx, n, st, v, parentPath))
	}
	e.setAlias(n, st, parentPath, data)
	if v, _ := dom.Attr(n, attrEach); v != "" {
		return wrapRender(n.Data, DirectiveEach, parentPath, e.renderEach(ctx, n, st, v, parentPath))
	}
	if dom.HasChildren(n) {
		return e.renderChildren(ctx, n, data, parentPath)
	}
	return wrapRender(n.Data, DirectiveText, parentPath, e.renderText(n, st, parentPath))
}

// renderContext scopes the children of n to the value at the p-context
// path, optionally passed through a converter or projection.
func (e *Engine) renderContext(ctx context.Context, n *html.Node, st *nodeState, directive, parentPath string) error {
	path, method := expr.DividePipe(directive)
	target, err := e.resolver(st.alias).Resolve(path, st.context)
	if err != nil {
		return err
	}
	if method != "" {
		if target, err = e.convert(method, target, st.alias); err != nil {
			return err
		}
	}
	full := path
	if parentPath != "" {
		full = parentPath + "." + path
	}
	e.setAlias(n, st, full, target)
	if err := e.setRelation(n, st, path, parentPath); err != nil {
		return err
	}
	return e.renderChildren(ctx, n, target, full)
}

// renderEach replaces the children of n with one copy of its template per
// element of the sequence at the p-each path.
func (e *Engine) renderEach(ctx context.Context, n *html.Node, st *nodeState, directive, parentPath string) error {
	path := spaceless(directive)
	target, err := e.resolver(st.alias).Resolve(path, st.context)
	if err != nil {
		return err
	}
	if !st.hasTemplate {
		for _, c := range dom.Children(n) {
			st.template = append(st.template, dom.Clone(c))
		}
		st.hasTemplate = true
		if err := e.setRelation(n, st, path, parentPath); err != nil {
			return err
		}
	}
	full := path
	if parentPath != "" {
		full = parentPath + "." + path
	}

	e.dispose(dom.RemoveChildren(n))
	for i, item := range value.Elements(target) {
		clones := make([]*html.Node, len(st.template))
		for j, t := range st.template {
			clones[j] = dom.Clone(t)
			n.AppendChild(clones[j])
		}
		itemPath := fmt.Sprintf("%s[%d]", full, i)
		for _, c := range clones {
			if err := e.renderSingle(ctx, c, item, itemPath, st.alias.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderChildren renders the element children of n in order, each scoped
// to data.
func (e *Engine) renderChildren(ctx context.Context, n *html.Node, data any, parentPath string) error {
	alias := e.states[n].alias
	for _, c := range dom.Children(n) {
		e.stateOf(c, data).context = data
		if err := e.renderSingle(ctx, c, data, parentPath, alias.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// renderText evaluates the leaf's text pattern and writes the result as its
// only content.
func (e *Engine) renderText(n *html.Node, st *nodeState, parentPath string) error {
	pattern := dom.Text(n)
	if b, ok := st.bindings[bindingText]; ok {
		pattern = b.pattern
	} else if !expr.HasToken(pattern) {
		return nil
	}
	out, err := e.convertFromPattern(n, st, bindingText, pattern, parentPath, value.String)
	if err != nil {
		return err
	}
	dom.SetText(n, out)
	return nil
}

// setAlias points self, and the p-as name if any, at (data, path). A nil
// data keeps the node's own context.
func (e *Engine) setAlias(n *html.Node, st *nodeState, path string, data any) {
	if data == nil {
		data = st.context
	}
	st.alias.Bind(scope.Self, data, path)
	if name, _ := dom.Attr(n, attrAs); name != "" {
		st.alias.Bind(name, data, path)
	}
}
