package engine

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/atom122158003/pandyle/internal/dom"
	"github.com/atom122158003/pandyle/internal/expr"
	"github.com/atom122158003/pandyle/internal/extension"
	"github.com/atom122158003/pandyle/internal/scope"
	"github.com/atom122158003/pandyle/internal/value"
)

// bindAttr parses p-bind once, then rewrites every bound attribute from its
// pattern.
func (e *Engine) bindAttr(n *html.Node, st *nodeState, parentPath string) error {
	if raw, _ := dom.Attr(n, attrBind); raw != "" {
		for _, info := range strings.Split(raw, "^") {
			name, pattern, _ := strings.Cut(info, ":")
			name = spaceless(name)
			if name == "" {
				continue
			}
			st.replace(name, pattern)
		}
		dom.RemoveAttr(n, attrBind)
	}
	for _, name := range st.order {
		if name == bindingText || name == bindingIf {
			continue
		}
		out, err := e.convertFromPattern(n, st, name, st.bindings[name].pattern, parentPath, value.String)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", name, err)
		}
		dom.SetAttr(n, name, out)
	}
	return nil
}

// bindIf migrates p-if into the binding table, then shows or hides n
// according to the condition.
func (e *Engine) bindIf(n *html.Node, st *nodeState, parentPath string) error {
	if raw, _ := dom.Attr(n, attrIf); raw != "" {
		st.replace(bindingIf, raw)
		dom.RemoveAttr(n, attrIf)
	}
	b, ok := st.bindings[bindingIf]
	if !ok {
		return nil
	}
	cond, err := e.convertFromPattern(n, st, bindingIf, b.pattern, parentPath, expr.Substitution)
	if err != nil {
		return err
	}
	visible, err := expr.EvalCondition(cond)
	if err != nil {
		return fmt.Errorf("condition %q: %w", cond, err)
	}
	if visible {
		dom.Show(n)
	} else {
		dom.Hide(n)
	}
	return nil
}

// convertFromPattern expands every token of pattern against the node's
// context. Until the binding is resolved each token also registers its
// path; the binding counts as resolved once a whole expansion succeeds.
func (e *Engine) convertFromPattern(n *html.Node, st *nodeState, key, pattern, parentPath string, format func(any) string) (string, error) {
	if !expr.HasToken(pattern) {
		return pattern, nil
	}
	b := st.capture(key, pattern)
	registering := !b.resolved
	r := e.resolver(st.alias)
	out, err := expr.Expand(pattern, func(tok string) (string, error) {
		if registering {
			if err := e.setRelation(n, st, tok, parentPath); err != nil {
				return "", err
			}
		}
		v, err := r.Value(tok, st.context)
		if err != nil {
			return "", err
		}
		return format(v), nil
	})
	if err != nil {
		return "", err
	}
	if registering {
		b.resolved = true
	}
	return out, nil
}

// setRelation registers n as depending on the absolute form of path.
func (e *Engine) setRelation(n *html.Node, st *nodeState, path, parentPath string) error {
	key, err := expr.Normalize(path, parentPath, st.alias)
	if err != nil {
		return err
	}
	e.relations.Register(key, n)
	return nil
}

// convert applies a pipe method: an object projection or a converter from
// the engine's registry (falling back to the process-wide one).
func (e *Engine) convert(method string, v any, aliases scope.Map) (any, error) {
	if expr.IsProjection(method) {
		pairs, err := expr.ParseProjection(method)
		if err != nil {
			return nil, err
		}
		r := e.resolver(aliases)
		out := make(map[string]any, len(pairs))
		for _, p := range pairs {
			got, err := r.Resolve(p.Path, v)
			if err != nil {
				return nil, fmt.Errorf("projection %s: %w", p.Key, err)
			}
			out[p.Key] = got
		}
		return out, nil
	}
	if _, ok := e.ext.Converter(method); ok {
		return e.ext.Convert(method, v)
	}
	if _, ok := e.globalExt.Converter(method); ok {
		return e.globalExt.Convert(method, v)
	}
	return nil, fmt.Errorf("converter %q: %w", method, extension.ErrNotFound)
}

func spaceless(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
