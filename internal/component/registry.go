package component

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"github.com/atom122158003/pandyle/internal/dom"
)

// NameAttr is the placeholder attribute naming the component to load.
const NameAttr = "name"

// Sentinel errors.
var (
	ErrNotFound    = errors.New("component: not found")
	ErrMissingName = errors.New("component: placeholder has no name attribute")
)

// IsNotFound reports whether err is a missing-component error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Factory builds a component from the attributes of its placeholder.
type Factory func(attrs map[string]string) templ.Component

// Registry maps component names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	markdown  goldmark.Markdown
}

// NewRegistry returns an empty registry. Markdown sources are rendered with
// raw HTML passed through, so they may contain directive elements.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		markdown:  goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe())),
	}
}

// Add registers a component that ignores placeholder attributes.
func (r *Registry) Add(name string, c templ.Component) {
	r.AddFunc(name, func(map[string]string) templ.Component { return c })
}

// AddFunc registers a factory under name, replacing any previous one.
func (r *Registry) AddFunc(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		slog.Debug("component replaced", "name", name)
	}
	r.factories[name] = f
}

// AddFS registers every .html and .md file in fsys. The component name is
// the slash-separated file path without its extension, so docs/intro.md
// becomes "docs/intro". Hidden files and directories are skipped.
func (r *Registry) AddFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := path.Ext(p)
		if ext != ".html" && ext != ".md" {
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read component %s: %w", p, err)
		}
		if ext == ".md" {
			var buf bytes.Buffer
			if err := r.markdown.Convert(src, &buf); err != nil {
				return fmt.Errorf("convert markdown %s: %w", p, err)
			}
			src = buf.Bytes()
		}
		r.Add(strings.TrimSuffix(p, ext), templ.Raw(string(src)))
		return nil
	})
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load renders the component named by the placeholder's name attribute and
// replaces the placeholder's children with the result. It satisfies
// engine.ComponentLoader.
func (r *Registry) Load(ctx context.Context, n *html.Node) error {
	name, _ := dom.Attr(n, NameAttr)
	if name == "" {
		return ErrMissingName
	}
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}
	var buf bytes.Buffer
	if err := f(attrs).Render(ctx, &buf); err != nil {
		return fmt.Errorf("render component %q: %w", name, err)
	}
	size := buf.Len()
	if err := dom.ReplaceChildren(n, &buf); err != nil {
		return fmt.Errorf("parse component %q: %w", name, err)
	}
	slog.Debug("component loaded", "name", name, "bytes", size)
	return nil
}
