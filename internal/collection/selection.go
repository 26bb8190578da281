package collection

import (
	"slices"

	"github.com/roach88/glimpse/internal/ir"
)

// Item is one entry of a Selection.
type Item struct {
	ID     string
	Kind   Kind
	Result Result
}

// Selection is an ordered list of resolved source values. It is built
// fresh for each query and shares no memory with the Collection.
type Selection struct {
	items []Item
}

// NewSelection builds a Selection from items. Mostly useful in tests of
// derive functions.
func NewSelection(items ...Item) Selection {
	return Selection{items: slices.Clone(items)}
}

// Len returns the number of items.
func (s Selection) Len() int {
	return len(s.items)
}

// At returns the i-th item.
func (s Selection) At(i int) Item {
	return s.items[i]
}

// Items returns a copy of the items.
func (s Selection) Items() []Item {
	return slices.Clone(s.items)
}

// IDs returns the item ids in order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.items))
	for i, it := range s.items {
		ids[i] = it.ID
	}
	return ids
}

// Values returns the values of the items that carry one, in order.
func (s Selection) Values() []ir.IRValue {
	vals := make([]ir.IRValue, 0, len(s.items))
	for _, it := range s.items {
		if it.Result.OK() {
			vals = append(vals, it.Result.Value)
		}
	}
	return vals
}

// Err returns the first error result in the selection, or nil.
func (s Selection) Err() error {
	for _, it := range s.items {
		if !it.Result.OK() {
			return it.Result.Err
		}
	}
	return nil
}

// Select resolves sel and returns the values of the picked sources in
// resolution order. All groups are concatenated. A nil selector, or one
// that panics while expanding, selects nothing.
func (c *Collection) Select(sel Selector) Selection {
	groups, err := c.resolveGroups(sel)
	if err != nil {
		c.logger.Warn("selector failed", "error", err)
	}
	var items []Item
	for _, ids := range groups {
		items = append(items, c.items(ids)...)
	}
	return Selection{items: items}
}

// items looks up already-resolved ids. Ids removed since resolution are skipped.
func (c *Collection) items(ids []string) []Item {
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		rec, ok := c.records[id]
		if !ok {
			continue
		}
		items = append(items, Item{ID: id, Kind: rec.kind, Result: rec.result()})
	}
	return items
}
