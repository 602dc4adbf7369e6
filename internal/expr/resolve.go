package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atom122158003/pandyle/internal/scope"
	"github.com/atom122158003/pandyle/internal/store"
	"github.com/atom122158003/pandyle/internal/value"
)

// LookupFunc finds a named callable in a registry.
type LookupFunc func(name string) (any, bool)

// Resolver resolves property paths against a data context.
type Resolver struct {
	// Aliases backs @name references.
	Aliases scope.Map
	// Methods is the host-registered method table.
	Methods LookupFunc
	// Globals is the process-wide method registry.
	Globals LookupFunc
	// Window is the global object; its callable members are the last
	// resort for call suffixes.
	Window any
}

// Resolve walks path from data and returns the raw value found there. A
// missing member yields nil. Calls are made as they are encountered.
func (r Resolver) Resolve(path string, data any) (any, error) {
	segs, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	cur := data
	for _, seg := range segs {
		var v any
		if seg.Alias {
			a, ok := r.Aliases.Lookup(seg.Name)
			if !ok {
				return nil, fmt.Errorf("%w: @%s", ErrUnknownAlias, seg.Name)
			}
			v = a.Data
		} else {
			v, err = member(cur, seg.Name)
			if err != nil {
				return nil, err
			}
		}
		for _, suf := range seg.Suffixes {
			if !suf.Call {
				if v, err = value.Index(v, suf.Index); err != nil {
					return nil, err
				}
				continue
			}
			if v, err = r.call(seg.Name, v, suf.Args, data); err != nil {
				return nil, err
			}
		}
		cur = v
	}
	return cur, nil
}

// Value resolves path and coerces the result onto a fresh value of its
// kind.
func (r Resolver) Value(path string, data any) (any, error) {
	v, err := r.Resolve(path, data)
	if err != nil {
		return nil, err
	}
	return value.Coerce(v), nil
}

// member reads name off v. All-digit names index sequences.
func member(v any, name string) (any, error) {
	if isDigits(name) && value.IsSequence(v) {
		n, _ := strconv.Atoi(name)
		return value.Index(v, n)
	}
	got, _ := value.Field(v, name)
	return got, nil
}

func (r Resolver) call(name string, fn any, rawArgs []string, data any) (any, error) {
	args := make([]any, len(rawArgs))
	for i, raw := range rawArgs {
		var err error
		if IsPathArg(raw) {
			args[i], err = r.Resolve(raw, data)
		} else {
			args[i], err = EvalLiteral(raw)
		}
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, name, err)
		}
	}

	callee, ok := r.callee(name, fn)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, name)
	}
	out, err := value.Call(callee, args...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	return out, nil
}

// callee picks the first callable of: the value itself, the host method
// table, the process-wide registry, the global object.
func (r Resolver) callee(name string, fn any) (any, bool) {
	if value.Callable(fn) {
		return fn, true
	}
	for _, lookup := range []LookupFunc{r.Methods, r.Globals} {
		if lookup == nil {
			continue
		}
		if m, ok := lookup(name); ok && value.Callable(m) {
			return m, true
		}
	}
	if m, ok := value.Field(r.Window, name); ok && value.Callable(m) {
		return m, true
	}
	return nil, false
}

// Normalize turns path into the absolute dependency key it refers to.
// Alias-rooted paths are rebased onto the alias's recorded path; other
// paths are prefixed with parentPath. Numeric dotted segments are rewritten
// as indices.
func Normalize(path, parentPath string, aliases scope.Map) (string, error) {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "@") {
		name := path[1:]
		rest := ""
		if i := strings.IndexAny(name, ".[("); i >= 0 {
			name, rest = name[:i], name[i:]
		}
		a, ok := aliases.Lookup(name)
		if !ok {
			return "", fmt.Errorf("%w: @%s", ErrUnknownAlias, name)
		}
		path = a.Path + rest
	} else if parentPath != "" {
		path = parentPath + "." + path
	}
	path = strings.TrimPrefix(path, ".")
	if canon, err := store.Canonical(path); err == nil {
		path = canon
	}
	return path, nil
}
