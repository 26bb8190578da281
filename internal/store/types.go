package store

import "github.com/roach88/glimpse/internal/ir"

// Pass is one logged derivation pass.
type Pass struct {
	ID       string
	Seq      int64
	Manifest string // path of the manifest the collection came from, if any
	Digest   string

	Evaluated []string
	Cycles    [][]string
	Failed    []string

	// Results is empty when the pass was read without its results.
	Results []SourceResult
}

// SourceResult is the state of one source at the end of a pass.
type SourceResult struct {
	SourceID     string
	Kind         string     // "raw" or "derived"
	Value        ir.IRValue // nil when ErrorCode is set
	ErrorCode    string
	ErrorMessage string
}

// SourceSnapshot is a SourceResult tagged with the pass that produced it.
type SourceSnapshot struct {
	PassID  string
	PassSeq int64
	SourceResult
}
