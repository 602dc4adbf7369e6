// Package scope implements the per-node alias maps used to shorten
// expressions.
//
// An alias binds a short name to a piece of data and the absolute path that
// data lives at. Every node sees `self`; root nodes also see `root` (the
// whole store) and `window` (the global object). Children receive a copy of
// their parent's map, so names a child adds never leak upward or sideways.
package scope

import "maps"

// Well-known alias names.
const (
	Self   = "self"
	Root   = "root"
	Window = "window"
)

// WindowPath is the path recorded for the global-object alias. It is
// itself alias-rooted so normalization never mistakes it for store data.
const WindowPath = "@window"

// Alias is a named (data, path) pair.
type Alias struct {
	Data any
	Path string
}

// Map maps alias names to their bindings.
type Map map[string]Alias

// Defaults returns the map every root node starts from.
func Defaults(root, global any) Map {
	return Map{
		Root:   {Data: root, Path: ""},
		Window: {Data: global, Path: WindowPath},
	}
}

// Clone returns a shallow copy of m. A nil map clones to an empty one.
func (m Map) Clone() Map {
	if m == nil {
		return Map{}
	}
	return maps.Clone(m)
}

// Bind sets name to (data, path).
func (m Map) Bind(name string, data any, path string) {
	m[name] = Alias{Data: data, Path: path}
}

// Lookup returns the binding for name.
func (m Map) Lookup(name string) (Alias, bool) {
	a, ok := m[name]
	return a, ok
}
