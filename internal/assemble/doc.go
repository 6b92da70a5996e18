// Package assemble implements the deterministic code-assembly engine: it
// merges a validated structural skeleton (an ordered tree of statement
// nodes) with per-node implementation fragments into final indented source
// text.
//
// The entire algorithm is the base-indent rule: a node's indentation is
// computed from its tree depth alone, never inferred from the emitted text
// or from trailing block-opening tokens. Fragments that span multiple lines
// are treated as pre-indented - their embedded relative indentation is
// preserved verbatim below a base-indent prefix. This makes rendering a
// single pass with no backtracking, and makes an empty fragment emit
// nothing without disturbing sibling indentation.
package assemble
