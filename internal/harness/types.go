package harness

import (
	"github.com/roach88/glimpse/internal/ir"
	"github.com/roach88/glimpse/internal/store"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq  int64       `json:"seq"`
	Op   string      `json:"op"`
	Args ir.IRObject `json:"args,omitempty"`

	// Pass is set for pass steps.
	Pass *PassTrace `json:"pass,omitempty"`
}

// PassTrace is the part of a pass worth comparing across runs.
type PassTrace struct {
	ID        string     `json:"id"`
	Evaluated []string   `json:"evaluated"`
	Cycles    [][]string `json:"cycles"`
	Failed    []string   `json:"failed"`
	Digest    string     `json:"digest"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Trace lists the executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the result of every source after the last step.
	Final []store.SourceResult `json:"final"`

	// Topics lists the notifier topics emitted, in order.
	Topics []string `json:"topics"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  []store.SourceResult{},
		Topics: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
