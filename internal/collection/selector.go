package collection

import (
	"fmt"
	"slices"
	"strings"
)

// Resolver turns a selector expression into source ids.
// *Collection implements it; Dynamic selectors receive one.
type Resolver interface {
	Resolve(expr string) []string
}

// Selector picks sources. It expands to one or more groups; each group is
// a comma-delimited expression resolved on its own. A derived source
// receives one Selection per group.
//
// Only Literal, Groups, and Dynamic implement Selector.
type Selector interface {
	Expand(r Resolver) []string
}

// Literal is a single group, e.g. "A,B" or "totals".
type Literal string

// Expand returns the literal as the only group.
func (l Literal) Expand(Resolver) []string {
	return []string{string(l)}
}

// Groups is a list of groups, e.g. Groups{"A", "B"} feeds a derivation two
// Selections, one for A and one for B.
type Groups []string

// Expand returns a copy of the groups.
func (g Groups) Expand(Resolver) []string {
	return slices.Clone([]string(g))
}

// Dynamic computes its groups from the resolver each time it is expanded.
type Dynamic func(r Resolver) []string

// Expand calls the function. A nil Dynamic expands to nothing.
func (d Dynamic) Expand(r Resolver) []string {
	if d == nil {
		return nil
	}
	return d(r)
}

// Tokens splits a selector expression on commas and trims each token.
// Empty tokens are dropped.
func Tokens(expr string) []string {
	parts := strings.Split(expr, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Resolve turns a selector expression into an ordered list of ids.
//
// A token naming an existing id yields that id. Any other token yields
// every id tagged with it, in insertion order. Token results are
// concatenated in token order and duplicates are kept.
func (c *Collection) Resolve(expr string) []string {
	ids := []string{}
	for _, token := range Tokens(expr) {
		if _, ok := c.records[token]; ok {
			ids = append(ids, token)
			continue
		}
		for _, id := range c.order {
			if c.records[id].tags.Contains(token) {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// resolveGroups expands sel and resolves every group, one id list per group.
// A selector that panics while expanding yields no groups and the error.
func (c *Collection) resolveGroups(sel Selector) ([][]string, error) {
	if sel == nil {
		return nil, nil
	}
	groups, err := expand(sel, c)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = c.Resolve(g)
	}
	return out, nil
}

// expand calls sel.Expand, converting a panic into an error.
func expand(sel Selector, r Resolver) (groups []string, err error) {
	defer func() {
		if p := recover(); p != nil {
			groups = nil
			err = fmt.Errorf("selector panicked: %v", p)
		}
	}()
	return sel.Expand(r), nil
}

// InSources reports whether a source with the given id and tags is picked
// by any of the selector tokens in sources.
func InSources(id string, tags []string, sources []string) bool {
	for _, s := range sources {
		for _, token := range Tokens(s) {
			if token == id || slices.Contains(tags, token) {
				return true
			}
		}
	}
	return false
}
