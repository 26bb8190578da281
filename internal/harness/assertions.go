package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Index    int
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertions[%d] failed: %s\n", e.Index, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the harness state and
// returns one message per failure.
func EvaluateAssertions(h *Harness, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(h, a); err != nil {
			if ae, ok := err.(*AssertionError); ok {
				ae.Index = i
			}
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(h *Harness, a Assertion) error {
	switch a.Type {
	case AssertValue:
		return assertValue(h.coll, a)
	case AssertError:
		return assertError(h.coll, a)
	case AssertResolve:
		return compareIDs(a.Type, a.IDs, h.coll.Resolve(a.Selector))
	case AssertSelect:
		return compareIDs(a.Type, a.IDs, h.coll.Select(collection.Literal(a.Selector)).IDs())
	case AssertTags:
		return compareIDs(a.Type, a.Tags, h.coll.GetTags(a.ID))
	case AssertEmpty:
		return assertEmpty(h.coll, a)
	case AssertEvents:
		return compareIDs(a.Type, a.Topics, h.notifier.Topics())
	case AssertCycles:
		var got [][]string
		if h.lastPass != nil {
			got = h.lastPass.Cycles
		}
		if len(got) == 0 && len(a.Cycles) == 0 {
			return nil
		}
		if !reflect.DeepEqual(a.Cycles, got) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Cycles), Actual: fmt.Sprint(got)}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertValue(c *collection.Collection, a Assertion) error {
	want, err := ir.FromAny(a.Expect)
	if err != nil {
		return fmt.Errorf("assertion value %s: expect: %w", a.ID, err)
	}
	res, ok := c.Get(a.ID)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: formatValue(want), Actual: fmt.Sprintf("no source %q", a.ID)}
	}
	if !res.OK() {
		return &AssertionError{Type: a.Type, Expected: formatValue(want), Actual: res.Err.Error()}
	}
	if !reflect.DeepEqual(want, res.Value) {
		return &AssertionError{Type: a.Type, Expected: formatValue(want), Actual: formatValue(res.Value)}
	}
	return nil
}

func assertError(c *collection.Collection, a Assertion) error {
	res, ok := c.Get(a.ID)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: a.Code, Actual: fmt.Sprintf("no source %q", a.ID)}
	}
	if res.OK() {
		return &AssertionError{Type: a.Type, Expected: a.Code, Actual: "value " + formatValue(res.Value)}
	}
	if string(res.Err.Code) != a.Code {
		return &AssertionError{Type: a.Type, Expected: a.Code, Actual: string(res.Err.Code)}
	}
	return nil
}

func assertEmpty(c *collection.Collection, a Assertion) error {
	want := a.Expect.(bool)
	var sel collection.Selector
	if a.Selector != "" {
		sel = collection.Literal(a.Selector)
	}
	if got := c.IsEmpty(sel); got != want {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
	}
	return nil
}

func compareIDs(kind string, want, got []string) error {
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{Type: kind, Expected: fmt.Sprintf("%q", want), Actual: fmt.Sprintf("%q", got)}
}

func formatValue(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
