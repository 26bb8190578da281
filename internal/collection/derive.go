package collection

import (
	"errors"
	"fmt"

	"github.com/roach88/glimpse/internal/ir"
)

// errNoDerive is the cause recorded for a derived source without a function.
var errNoDerive = errors.New("derived source has no derive function")

// PassReport describes one UpdateDerivations pass.
type PassReport struct {
	// Order lists the derived sources evaluated, in evaluation order.
	Order []string `json:"order"`

	// Cycles lists the members of each dependency cycle found.
	Cycles [][]string `json:"cycles,omitempty"`

	// Failed lists derived sources whose derive function failed.
	Failed []string `json:"failed,omitempty"`
}

// Circular returns every source that received a Circular result.
func (r PassReport) Circular() []string {
	var ids []string
	for _, cycle := range r.Cycles {
		ids = append(ids, cycle...)
	}
	return ids
}

// UpdateDerivations recomputes every derived source once, dependencies
// before dependents.
//
// Members of a dependency cycle get a Circular result. Derived sources that
// depend on a cycle are still evaluated; the cyclic inputs reach their
// derive function as error items in its Selection. A derived source whose
// derive function errors or panics, or whose selector panics, is left with
// a Failed result. No outcome of the pass is raised to the caller.
func (c *Collection) UpdateDerivations() PassReport {
	g := c.buildGraph()
	report := PassReport{Order: []string{}}

	for _, comp := range g.components() {
		if g.cyclic(comp) {
			for _, id := range comp {
				c.records[id].cached = &Result{Err: &DerivationError{Code: CodeCircular, ID: id}}
			}
			report.Cycles = append(report.Cycles, comp)
			c.logger.Warn("circular dependency", "sources", comp)
			continue
		}

		rec := c.records[comp[0]]
		if rec.kind != KindDerived {
			continue
		}
		res := c.evaluate(rec)
		rec.cached = &res
		report.Order = append(report.Order, rec.id)
		if !res.OK() {
			report.Failed = append(report.Failed, rec.id)
			c.logger.Warn("derivation failed", "id", rec.id, "error", res.Err)
		}
	}

	c.logger.Debug("derivations updated",
		"evaluated", len(report.Order),
		"cycles", len(report.Cycles),
		"failed", len(report.Failed),
	)
	return report
}

// evaluate runs one derived source's function over fresh Selections.
func (c *Collection) evaluate(rec *record) Result {
	groups, err := c.resolveGroups(rec.sources)
	if err != nil {
		return Result{Err: &DerivationError{Code: CodeFailed, ID: rec.id, Cause: err}}
	}
	inputs := make([]Selection, len(groups))
	for i, ids := range groups {
		inputs[i] = Selection{items: c.items(ids)}
	}

	value, err := callDerive(rec.derive, inputs)
	if err != nil {
		return Result{Err: &DerivationError{Code: CodeFailed, ID: rec.id, Cause: err}}
	}

	value = ir.Clone(value)
	switch v := value.(type) {
	case nil:
		value = ir.IRNull{}
	case ir.IRObject:
		// Keep the source's metadata queryable on its value.
		v["id"] = ir.IRString(rec.id)
		v["tags"] = ir.Strings(rec.tags.Slice()...)
	}
	return Result{Value: value}
}

// callDerive invokes fn, converting a panic into an error.
func callDerive(fn DeriveFunc, inputs []Selection) (value ir.IRValue, err error) {
	if fn == nil {
		return nil, errNoDerive
	}
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("derive panicked: %v", r)
		}
	}()
	return fn(inputs...)
}
