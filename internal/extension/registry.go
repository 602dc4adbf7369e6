// Package extension holds host-supplied methods, filters, converters and
// variables that bound expressions may reach.
//
// Each engine owns a Registry. Global is the process-wide registry consulted
// after an engine's own methods.
package extension

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/atom122158003/pandyle/internal/value"
)

// Name suffixes used by Register to route callables.
const (
	FilterSuffix    = "Filter"
	ConverterSuffix = "Converter"
)

// Global is the process-wide registry.
var Global = NewRegistry()

// Registry stores named extensions. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	methods    map[string]any
	filters    map[string]any
	converters map[string]any
	variables  map[string]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		methods:    make(map[string]any),
		filters:    make(map[string]any),
		converters: make(map[string]any),
		variables:  make(map[string]any),
	}
}

// AddMethod registers fn as a method callable from expressions.
func (r *Registry) AddMethod(name string, fn any) error {
	return r.addFunc(r.methods, "method", name, fn)
}

// AddFilter registers fn as a filter.
func (r *Registry) AddFilter(name string, fn any) error {
	return r.addFunc(r.filters, "filter", name, fn)
}

// AddConverter registers fn as a converter. The Converter suffix is
// optional in name and in lookups.
func (r *Registry) AddConverter(name string, fn any) error {
	return r.addFunc(r.converters, "converter", strings.TrimSuffix(name, ConverterSuffix), fn)
}

// AddVariable registers a non-callable value.
func (r *Registry) AddVariable(name string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = v
}

// Register routes value by kind and name: callables ending in Filter or
// Converter go to those tables, other callables become methods, anything
// else is a variable.
func (r *Registry) Register(name string, v any) error {
	if !value.Callable(v) {
		r.AddVariable(name, v)
		return nil
	}
	switch {
	case strings.HasSuffix(name, FilterSuffix):
		return r.AddFilter(name, v)
	case strings.HasSuffix(name, ConverterSuffix):
		return r.AddConverter(name, v)
	default:
		return r.AddMethod(name, v)
	}
}

func (r *Registry) addFunc(table map[string]any, kind, name string, fn any) error {
	if name == "" {
		return fmt.Errorf("register %s: empty name", kind)
	}
	if !value.Callable(fn) {
		return fmt.Errorf("register %s %q: %w", kind, name, value.ErrNotCallable)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := table[name]; exists {
		slog.Debug("extension replaced", "kind", kind, "name", name)
	}
	table[name] = fn
	return nil
}

// Method returns the method registered as name.
func (r *Registry) Method(name string) (any, bool) {
	return r.get(r.methods, name)
}

// Filter returns the filter registered as name.
func (r *Registry) Filter(name string) (any, bool) {
	return r.get(r.filters, name)
}

// Converter returns the converter registered as name, with or without the
// Converter suffix.
func (r *Registry) Converter(name string) (any, bool) {
	return r.get(r.converters, strings.TrimSuffix(name, ConverterSuffix))
}

// Variable returns the variable registered as name.
func (r *Registry) Variable(name string) (any, bool) {
	return r.get(r.variables, name)
}

// Convert applies the named converter to v.
func (r *Registry) Convert(name string, v any) (any, error) {
	fn, ok := r.Converter(name)
	if !ok {
		return nil, fmt.Errorf("converter %q: %w", name, ErrNotFound)
	}
	return value.Call(fn, v)
}

// Names lists registered method, filter and converter names, sorted.
func (r *Registry) Names() (methods, filters, converters []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.methods), sortedKeys(r.filters), sortedKeys(r.converters)
}

func (r *Registry) get(table map[string]any, name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := table[name]
	return v, ok
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
