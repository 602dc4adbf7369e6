// Package store holds the data tree a document is bound to.
//
// The tree is an arbitrary nesting of mappings, sequences and scalars. The
// generic forms (map[string]any, []any) are handled directly; other maps,
// slices, arrays and structs are reached through reflection.
//
// # Paths
//
// A path addresses a location in the tree with dotted keys and bracketed
// indices:
//
//	users[0].name
//	settings.theme
//	items.2          (numeric dotted keys are indices, same as items[2])
//
// # Writes
//
// Write mutates the tree in place. Missing intermediate containers are
// created (a mapping for a key step, a sequence for an index step). Writing
// past the end of a sequence grows it. Struct fields are writable when the
// struct is reachable through a pointer; struct values stored inside
// containers are copied, updated and written back.
//
// The store does not lock. A Store must not be written while a render of
// the same tree is in flight.
package store
