package collection

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/imdario/mergo"

	"github.com/roach88/glimpse/internal/ir"
)

// Collection is the source registry.
//
// INVARIANTS:
//   - ids in order are unique and match the keys of records
//   - order is insertion order; Upsert keeps an existing record's position
//   - records are never handed out; reads return copies
type Collection struct {
	order    []string
	records  map[string]*record
	notifier Notifier
	logger   *slog.Logger
}

// Option configures a Collection.
type Option func(*Collection)

// WithNotifier sets the Notifier that receives duplicate-id and tag-toggle
// events. Default: events are dropped.
func WithNotifier(n Notifier) Option {
	return func(c *Collection) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Collection) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty Collection.
func New(opts ...Option) *Collection {
	c := &Collection{
		records:  make(map[string]*record),
		notifier: nopNotifier{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add inserts sources in order and returns how many were inserted.
//
// A source whose id is already present is skipped: the existing record is
// left untouched and an EventDuplicateID is emitted. Sources with an empty
// id are skipped with a warning. The rest of the batch still proceeds.
func (c *Collection) Add(sources ...Source) int {
	added := 0
	for _, src := range sources {
		if src == nil {
			continue
		}
		id := src.SourceID()
		if id == "" {
			c.logger.Warn("source without id skipped")
			continue
		}
		if _, exists := c.records[id]; exists {
			c.logger.Warn("duplicate source id", "id", id)
			c.notifier.Notify(Event{Kind: EventDuplicateID, ID: id, Topic: string(EventDuplicateID)})
			continue
		}
		rec := newRecord(src)
		if rec == nil {
			continue
		}
		c.records[id] = rec
		c.order = append(c.order, id)
		added++
	}
	return added
}

// Upsert inserts src, or replaces the record with the same id in place.
// A replaced derived record loses its cached value.
func (c *Collection) Upsert(src Source) {
	if src == nil || src.SourceID() == "" {
		return
	}
	id := src.SourceID()
	if _, exists := c.records[id]; !exists {
		c.Add(src)
		return
	}
	if rec := newRecord(src); rec != nil {
		c.records[id] = rec
	}
}

// Extend shallow-merges the non-zero fields of p into the record p.ID.
// If no such record exists, the record p describes is added instead.
//
// A patch carrying derived fields (Sources, Derive) cannot extend a raw
// record, and a patch carrying Data cannot extend a derived one.
func (c *Collection) Extend(p Patch) error {
	if p.ID == "" {
		return ErrEmptyID
	}
	rec, ok := c.records[p.ID]
	if !ok {
		c.Add(p.source())
		return nil
	}

	switch rec.kind {
	case KindRaw:
		if p.isDerived() {
			return fmt.Errorf("extend %q: %w", p.ID, ErrKindMismatch)
		}
	case KindDerived:
		if p.Data != nil {
			return fmt.Errorf("extend %q: %w", p.ID, ErrKindMismatch)
		}
	}

	merged := rec.patch()
	if err := mergo.Merge(&merged, p, mergo.WithOverride); err != nil {
		return fmt.Errorf("extend %q: %w", p.ID, err)
	}

	rec.data = ir.Clone(merged.Data)
	rec.sources = merged.Sources
	rec.derive = merged.Derive
	c.setTags(rec, merged.Tags)
	return nil
}

// Append adds items to the end of a source's data array.
//
// For a raw source the payload itself must be an array (a null payload
// becomes one). For a derived source the cached value must be an object
// with a "data" array. Appending to an absent id is a no-op.
func (c *Collection) Append(id string, items ...ir.IRValue) error {
	rec, ok := c.records[id]
	if !ok {
		return nil
	}

	switch rec.kind {
	case KindRaw:
		arr, ok := asArray(rec.data)
		if !ok {
			return fmt.Errorf("append %q: %w", id, ErrNotAppendable)
		}
		rec.data = appendClones(arr, items)
		return nil
	default:
		if rec.cached == nil || !rec.cached.OK() {
			return fmt.Errorf("append %q: %w", id, ErrNotAppendable)
		}
		obj, isObj := rec.cached.Value.(ir.IRObject)
		if !isObj {
			return fmt.Errorf("append %q: %w", id, ErrNotAppendable)
		}
		arr, ok := asArray(obj["data"])
		if !ok {
			return fmt.Errorf("append %q: %w", id, ErrNotAppendable)
		}
		obj["data"] = appendClones(arr, items)
		return nil
	}
}

func asArray(v ir.IRValue) (ir.IRArray, bool) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return ir.IRArray{}, true
	case ir.IRArray:
		return val, true
	default:
		return nil, false
	}
}

func appendClones(arr ir.IRArray, items []ir.IRValue) ir.IRArray {
	for _, it := range items {
		if it == nil {
			it = ir.IRNull{}
		}
		arr = append(arr, ir.Clone(it))
	}
	return arr
}

// Remove deletes the records with the given ids. Absent ids are ignored.
func (c *Collection) Remove(ids ...string) {
	removed := false
	for _, id := range ids {
		if _, ok := c.records[id]; ok {
			delete(c.records, id)
			removed = true
		}
	}
	if !removed {
		return
	}
	c.order = slices.DeleteFunc(c.order, func(id string) bool {
		_, ok := c.records[id]
		return !ok
	})
}

// Get returns the resolved value of a source: the raw payload, the cached
// derived value, or a NotComputed error for a derived source no pass has
// reached. The second return is false when the id is absent.
func (c *Collection) Get(id string) (Result, bool) {
	rec, ok := c.records[id]
	if !ok {
		return Result{}, false
	}
	return rec.result(), true
}

// GetAll returns the resolved value of every source in insertion order.
func (c *Collection) GetAll() []Result {
	out := make([]Result, len(c.order))
	for i, id := range c.order {
		out[i] = c.records[id].result()
	}
	return out
}

// IsDerived reports whether id names a derived source.
func (c *Collection) IsDerived(id string) bool {
	rec, ok := c.records[id]
	return ok && rec.kind == KindDerived
}

// Kind returns the kind of the source and whether it exists.
func (c *Collection) Kind(id string) (Kind, bool) {
	rec, ok := c.records[id]
	if !ok {
		return 0, false
	}
	return rec.kind, true
}

// IsEmpty reports whether the collection holds no sources, or, with a
// non-nil selector, whether the selector picks none.
func (c *Collection) IsEmpty(sel Selector) bool {
	if sel == nil {
		return len(c.order) == 0
	}
	return c.Select(sel).Len() == 0
}

// Len returns the number of sources.
func (c *Collection) Len() int {
	return len(c.order)
}

// IDs returns all ids in insertion order.
func (c *Collection) IDs() []string {
	return slices.Clone(c.order)
}
