// Package store provides a SQLite-backed log of derivation passes.
//
// The log is an audit trail: it records what every pass produced, so a
// run can be inspected later with the history command. Sources themselves
// are never reloaded from it.
//
// # Tables
//
//   - passes: one row per pass, keyed by UUIDv7 and ordered by seq
//   - pass_results: the result of every source at the end of that pass
//
// # Ordering
//
// Passes are ordered by seq, a logical clock, never by wall time. Results
// within a pass keep the collection's insertion order (position column).
// Every query orders explicitly so reads are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Values and id lists are stored as RFC 8785 canonical JSON.
package store
