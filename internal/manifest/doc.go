// Package manifest loads declarative source definitions from YAML or CUE
// files and turns them into collection sources.
//
// A manifest lists sources in order:
//
//	sources:
//	  - id: A
//	    data: [1, 2, 3]
//	  - id: B
//	    sources: ["A"]
//	    derive: sum
//
// A declaration with derive is a derived source; each entry of its sources
// list is one selector group and becomes one Selection argument of the
// transform. A declaration without derive is a raw source holding data.
// Omitting tags keeps the collection defaults; an explicit empty list
// means no tags.
package manifest
