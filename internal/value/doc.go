// Package value defines how the engine sees data: the kind of a value, the
// neutral default for each kind, coercion of resolution results, and
// reflective field/index access over arbitrary Go data trees.
//
// The data tree is usually built from map[string]any, []any and scalars
// (the shape produced by JSON, YAML, CUE and msgpack decoders), but any map
// with string keys, slice, array, struct or pointer is accepted.
//
// Key design constraints:
//   - Missing data never surfaces as an error; it resolves to nil, whose
//     string form is empty.
//   - Canonical JSON (MarshalCanonical) sorts object keys by UTF-16 code
//     units and NFC-normalizes strings, so snapshots are byte-stable.
package value
