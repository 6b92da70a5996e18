// Package semantics implements the validation engine that gates code
// synthesis: the effect chain analyzer, the semantic validator, the logic
// error detector, and the interpreter that merges their findings into a
// single go/no-go decision.
//
// All entry points are pure functions over an immutable IR. Nothing in this
// package holds state between calls, so distinct IRs (or best-of-N
// candidates for the same IR) can be processed in parallel by the caller
// without locks.
//
// Determinism guarantee: interpreting the same IR twice yields identical
// issue lists - same issues, same order, same gate decision. Issue order is
// analyzer run order, then ascending effect location within each analyzer's
// batch. Duplicate findings (same kind and location) collapse to one issue
// carrying the highest severity seen.
package semantics
