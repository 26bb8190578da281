// Package collection implements the glimpse source registry and its
// derivation engine.
//
// A Collection maps unique ids to source records. A record is either a Raw
// source holding caller data, or a Derived source whose value is computed
// from other sources by a DeriveFunc. Tags group records; selectors pick
// them out.
//
// SELECTORS:
//
// A selector expression is a comma-delimited list of tokens. Each token is
// trimmed, then matched against ids first; a token that names no id matches
// every record carrying it as a tag, in insertion order. Results from each
// token are concatenated without deduplication, so "t,t" yields every
// t-tagged record twice. Two tags are reserved and assigned by default:
//
//   - "*" every raw source
//   - "+" every source, raw or derived
//
// DERIVATION:
//
// UpdateDerivations recomputes every derived value in one pass:
//  1. The dependency graph is built once by resolving each derived record's
//     selector groups.
//  2. Strongly connected components are found with an iterative Tarjan walk
//     (explicit stack, so chain depth is bounded by memory, not the goroutine
//     stack).
//  3. Components are visited dependencies-first. Members of a cycle receive a
//     Circular result; every other derived record is evaluated once.
//
// Cycle detection is graph-global: whether a record is cyclic never depends
// on which root the walk started from.
//
// Nothing in this package panics on bad input. Duplicate ids are reported to
// the Notifier and skipped, unmatched selector tokens resolve to nothing,
// and cyclic or failing derivations degrade to error Results.
//
// A Collection is single-threaded: it holds no locks and must not be shared
// between goroutines without external synchronization.
package collection
