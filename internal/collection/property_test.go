package collection

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/roach88/glimpse/internal/ir"
)

// Ids stay unique however many sources with colliding ids are added.
func TestProperty_IDsUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOf(rapid.SampledFrom([]string{"a", "b", "c", "d"})).Draw(t, "ids")

		rec := &eventRecorder{}
		c := newTestCollection(WithNotifier(rec))
		for _, id := range ids {
			c.Add(&Raw{ID: id, Data: ir.IRString(id)})
		}

		seen := map[string]bool{}
		for _, id := range c.IDs() {
			if seen[id] {
				t.Fatalf("duplicate id %q", id)
			}
			seen[id] = true
		}
		if got, want := rec.count(EventDuplicateID), len(ids)-c.Len(); got != want {
			t.Fatalf("duplicate events = %d, want %d", got, want)
		}
	})
}

// Toggling the same tags twice restores the original tag set. Tags that were
// present end up last, in the order they were first toggled.
func TestProperty_ToggleTwiceRestores(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.SliceOfDistinct(rapid.SampledFrom([]string{"*", "+", "x", "y", "z"}), rapid.ID[string]).Draw(t, "initial")
		toggle := rapid.SliceOf(rapid.SampledFrom([]string{"*", "+", "x", "y", "w"})).Draw(t, "toggle")

		c := newTestCollection()
		c.Add(&Raw{ID: "A", Tags: initial})
		before := c.GetTags("A")

		c.ToggleTags("A", toggle, "")
		c.ToggleTags("A", toggle, "")

		var kept, moved []string
		for _, tag := range before {
			if !slices.Contains(toggle, tag) {
				kept = append(kept, tag)
			}
		}
		for _, tag := range toggle {
			if slices.Contains(before, tag) && !slices.Contains(moved, tag) {
				moved = append(moved, tag)
			}
		}
		want := append(kept, moved...)
		if got := c.GetTags("A"); !slices.Equal(got, want) {
			t.Fatalf("tags after double toggle = %v, want %v", got, want)
		}
	})
}

// A derived source that sums a random chain always sees its whole chain.
func TestProperty_ChainSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vals := rapid.SliceOfN(rapid.Int64Range(-1000, 1000), 1, 20).Draw(t, "vals")

		c := newTestCollection()
		var want int64
		for i, v := range vals {
			want += v
			c.Add(&Raw{ID: fmt.Sprintf("r%d", i), Data: ir.IRInt(v), Tags: []string{"num"}})
		}
		c.Add(&Derived{ID: "total", Sources: Literal("num"), Derive: sumInts})
		c.UpdateDerivations()

		res := mustGet(c, "total")
		if !res.OK() || res.Value != ir.IRInt(want) {
			t.Fatalf("total = %v, want %d", res, want)
		}
	})
}
