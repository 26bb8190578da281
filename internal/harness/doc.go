// Package harness runs conformance scenarios against a collection.
//
// A scenario is a YAML file that builds a collection from a manifest and
// inline declarations, applies a list of steps (mutations, tag toggles,
// derivation passes), then checks assertions about the final state:
//
//	name: totals
//	description: a derived sum follows its raw input
//	manifest: ../manifests/totals.yaml
//	steps:
//	  - op: pass
//	  - op: append
//	    id: A
//	    items: [4]
//	  - op: pass
//	assertions:
//	  - type: value
//	    id: total
//	    expect: 10
//
// Every scenario runs against a fresh collection with deterministic pass
// ids and an in-memory pass log, so the trace of a run is byte-stable and
// can be compared against a golden file.
package harness
