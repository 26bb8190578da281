package collection

import (
	"github.com/roach88/glimpse/internal/tagset"
)

// GetTags returns the tags of a source in insertion order, or nil if the
// id is absent.
func (c *Collection) GetTags(id string) []string {
	rec, ok := c.records[id]
	if !ok {
		return nil
	}
	return rec.tags.Slice()
}

// SetTags replaces the tags of a source. Duplicates are dropped.
func (c *Collection) SetTags(id string, tags ...string) {
	if rec, ok := c.records[id]; ok {
		c.setTags(rec, tags)
	}
}

func (c *Collection) setTags(rec *record, tags []string) {
	rec.tags = tagset.New(tags...)
}

// AddTags adds tags to a source. Tags already present are ignored.
func (c *Collection) AddTags(id string, tags ...string) {
	if rec, ok := c.records[id]; ok {
		rec.tags.Add(tags...)
	}
}

// RemoveTags removes tags from a source. Absent tags are ignored.
func (c *Collection) RemoveTags(id string, tags ...string) {
	if rec, ok := c.records[id]; ok {
		rec.tags.Remove(tags...)
	}
}

// HasTags reports whether the source carries every one of tags.
// It is false for an absent id.
func (c *Collection) HasTags(id string, tags ...string) bool {
	rec, ok := c.records[id]
	if !ok {
		return false
	}
	return rec.tags.ContainsAll(tags...)
}

// ToggleTags flips the presence of each tag on a source, recomputes all
// derivations (a tag change can change what a selector picks), then emits
// an EventTagToggle on the scoped "data-toggle" topic.
// Toggling an absent id is a no-op. A tag toggled back on is appended, so a
// double toggle restores the tag set with the toggled tags moved last.
func (c *Collection) ToggleTags(id string, tags []string, scope string) {
	rec, ok := c.records[id]
	if !ok {
		return
	}
	rec.tags.Toggle(tags...)
	c.UpdateDerivations()
	c.notifier.Notify(Event{
		Kind:  EventTagToggle,
		ID:    id,
		Scope: scope,
		Topic: ScopedTopic(scope, string(EventTagToggle)),
	})
}
