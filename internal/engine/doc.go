// Package engine runs derivation passes over a collection.
//
// A Runner owns the bookkeeping around collection.UpdateDerivations: it
// stamps each pass with a logical seq from its Clock and a UUIDv7 id,
// wraps the pass in a trace span, snapshots every source's result, and
// optionally appends the outcome to the SQLite pass log.
//
// Passes never overlap. Ordering uses seq, never wall time, so a pass log
// replays in the same order it was written.
package engine
