package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/glimpse/internal/ir"
)

// Snapshot renders a scenario result as canonical JSON: the trace, the
// final state of every source, and the notifier topics.
func Snapshot(name string, result *Result) ([]byte, error) {
	trace := make(ir.IRArray, len(result.Trace))
	for i, ev := range result.Trace {
		obj := ir.IRObject{
			"seq": ir.IRInt(ev.Seq),
			"op":  ir.IRString(ev.Op),
		}
		if ev.Args != nil {
			obj["args"] = ev.Args
		}
		if p := ev.Pass; p != nil {
			cycles := make(ir.IRArray, len(p.Cycles))
			for j, c := range p.Cycles {
				cycles[j] = ir.Strings(c...)
			}
			obj["pass"] = ir.IRObject{
				"id":        ir.IRString(p.ID),
				"evaluated": ir.Strings(p.Evaluated...),
				"cycles":    cycles,
				"failed":    ir.Strings(p.Failed...),
				"digest":    ir.IRString(p.Digest),
			}
		}
		trace[i] = obj
	}

	final := make(ir.IRArray, len(result.Final))
	for i, r := range result.Final {
		obj := ir.IRObject{
			"id":   ir.IRString(r.SourceID),
			"kind": ir.IRString(r.Kind),
		}
		if r.ErrorCode != "" {
			obj["error"] = ir.IRString(r.ErrorCode)
		} else {
			obj["value"] = r.Value
		}
		final[i] = obj
	}

	return ir.MarshalCanonical(ir.IRObject{
		"scenario": ir.IRString(name),
		"trace":    trace,
		"final":    final,
		"topics":   ir.Strings(result.Topics...),
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
