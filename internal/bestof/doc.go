// Package bestof orchestrates best-of-N candidate generation over one
// validated intermediate representation.
//
// The orchestrator first runs the semantic gate; a blocked IR produces no
// candidates. When the gate passes, N generators run in parallel, each
// candidate is verified and scored against the IR's constraints, and the
// highest-scoring candidate wins with the earliest index breaking ties.
//
// Generation itself is an injected interface: the orchestrator never calls
// a model. PlanGenerator adapts pre-built structural plan documents for
// offline and test use.
package bestof
