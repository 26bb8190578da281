// Package tagset implements the small ordered set used for source tags.
//
// Membership is a set; iteration follows first-insertion order so that tag
// lists read back in the order callers wrote them.
package tagset

import "slices"

// Set is an insertion-ordered set of strings. The zero value is empty and
// ready to use. A Set is not safe for concurrent use.
type Set struct {
	items []string
	index map[string]int
}

// New creates a set holding tags, dropping duplicates.
func New(tags ...string) *Set {
	s := &Set{}
	s.Add(tags...)
	return s
}

// Add inserts tags not already present.
func (s *Set) Add(tags ...string) {
	if s.index == nil {
		s.index = make(map[string]int, len(tags))
	}
	for _, t := range tags {
		if _, ok := s.index[t]; ok {
			continue
		}
		s.index[t] = len(s.items)
		s.items = append(s.items, t)
	}
}

// Remove deletes tags if present.
func (s *Set) Remove(tags ...string) {
	changed := false
	for _, t := range tags {
		if _, ok := s.index[t]; ok {
			delete(s.index, t)
			changed = true
		}
	}
	if !changed {
		return
	}
	kept := s.items[:0]
	for _, t := range s.items {
		if _, ok := s.index[t]; ok {
			kept = append(kept, t)
		}
	}
	s.items = kept
	s.reindex()
}

// Toggle removes each tag that is present and adds each tag that is not.
// Tags repeated within one call are toggled once. An added tag goes to the
// end, so toggling a present tag twice restores membership but moves the
// tag after the others.
func (s *Set) Toggle(tags ...string) {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		if s.Contains(t) {
			s.Remove(t)
		} else {
			s.Add(t)
		}
	}
}

// Contains reports whether tag is a member.
func (s *Set) Contains(tag string) bool {
	_, ok := s.index[tag]
	return ok
}

// ContainsAll reports whether every tag is a member. Vacuously true for no tags.
func (s *Set) ContainsAll(tags ...string) bool {
	for _, t := range tags {
		if !s.Contains(t) {
			return false
		}
	}
	return true
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.items)
}

// Slice returns a copy of the members in insertion order.
func (s *Set) Slice() []string {
	return slices.Clone(s.items)
}

func (s *Set) reindex() {
	for i, t := range s.items {
		s.index[t] = i
	}
}
