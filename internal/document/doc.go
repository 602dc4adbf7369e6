// Package document loads data trees from files and computes the writes
// that turn one tree into another.
//
// Supported formats are chosen by file extension:
//
//	.json          encoding/json
//	.yaml, .yml    gopkg.in/yaml.v3
//	.cue           cuelang.org/go (the file must evaluate to concrete data)
//	.msgpack, .mp  github.com/vmihailenco/msgpack/v5
//
// Decoded trees use map[string]any, []any and scalars, the shapes the
// engine's store mutates in place.
//
// Diff compares two trees and returns the path → value writes that bring
// the first up to date, in the form engine.Set accepts. The watch command
// uses it to push file edits into a bound engine.
package document
