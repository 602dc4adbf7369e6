// Package expr evaluates the expressions embedded in bound markup.
//
// There are three layers:
//
//   - Template tokens: `{{ expr }}` occurrences inside text and attribute
//     values (HasToken, Tokens, Expand).
//   - Property paths: `a.b[2].c`, `@alias.prop`, `fn(arg, 1+2)`, resolved
//     against a data context by a Resolver, and normalized into absolute
//     dependency keys by Normalize.
//   - Literal expressions: a small sandboxed evaluator for conditions and
//     call arguments (EvalLiteral, EvalCondition). It understands numbers,
//     quoted strings, true/false/null, parentheses, arithmetic, comparison
//     and logical operators. It has no variables and cannot call anything.
//
// Pipes (`path|method`) and object projections (`{k:path,...}`) are parsed
// here and applied by the caller, which owns the converter registry.
package expr
