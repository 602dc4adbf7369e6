// Package engine implements the directive processor: it binds a data tree
// to an HTML node tree and re-renders only what a write affects.
//
// RENDERING:
//
// Render walks nodes depth first. For every node it
//  1. records the node's context on first visit (later visits reuse it),
//  2. applies p-bind attribute bindings and the p-if condition,
//  3. waits for the component loader when the node is a component
//     placeholder,
//  4. dispatches exactly one of p-context, p-each, child rendering or leaf
//     text rendering.
//
// Siblings are rendered sequentially: each finishes before the next starts.
//
// DEPENDENCIES:
//
// Every `{{ expr }}` token registers its normalized absolute path in the
// relation registry the first time its pattern is expanded. p-context and
// p-each register the path they scope to. Set writes through the store,
// prunes relations below a replaced sequence, and re-renders the elements of
// the first relation at or below the written path.
//
// NODE STATE:
//
// Per-node context, bindings, aliases and list templates live in a side
// table keyed by node identity. Clones removed by p-each are dropped from
// the table and from every relation.
//
// An Engine is not safe for concurrent use. Writes must not interleave with
// an outstanding render of overlapping nodes.
package engine
