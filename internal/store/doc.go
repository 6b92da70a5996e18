// Package store provides SQLite-backed durable storage for synthesis
// history.
//
// The store keeps an append-only record of:
//   - Revisions: IR function specifications, content-addressed by their
//     canonical-JSON hash so identical specs share one identity
//   - Runs: best-of-N batches executed against a revision
//   - Candidates: scored synthesis attempts within a run
//
// All ordering uses seq INTEGER (an insertion-order logical clock), never
// timestamps, so reads are deterministic across processes. Writes are
// idempotent: content-addressed conflicts are silently ignored.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content-addressed IDs are computed via functions in internal/ir/hash.go
// using RFC 8785 canonical JSON and SHA-256 with domain separation.
package store
