package manifest

import (
	"fmt"
	"slices"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/ir"
	"github.com/roach88/glimpse/internal/transform"
)

// Sources validates m and converts its declarations to collection
// sources, in declaration order.
func Sources(m *Manifest, reg *transform.Registry) ([]collection.Source, error) {
	if reg == nil {
		reg = transform.Default()
	}
	if err := Validate(m, reg); err != nil {
		return nil, err
	}

	out := make([]collection.Source, 0, len(m.Sources))
	for _, d := range m.Sources {
		src, err := d.source(reg)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", d.ID, err)
		}
		out = append(out, src)
	}
	return out, nil
}

func (d Decl) source(reg *transform.Registry) (collection.Source, error) {
	if d.IsDerived() {
		fn, err := reg.Lookup(d.Derive)
		if err != nil {
			return nil, err
		}
		return &collection.Derived{
			ID:      d.ID,
			Sources: collection.Groups(slices.Clone(d.Sources)),
			Derive:  fn,
			Tags:    slices.Clone(d.Tags),
		}, nil
	}

	data, err := ir.FromAny(d.Data)
	if err != nil {
		return nil, err
	}
	return &collection.Raw{ID: d.ID, Data: data, Tags: slices.Clone(d.Tags)}, nil
}

// Build adds every source of m to c and returns the number added.
// Nothing is added if the manifest is invalid.
func Build(c *collection.Collection, m *Manifest, reg *transform.Registry) (int, error) {
	sources, err := Sources(m, reg)
	if err != nil {
		return 0, err
	}
	return c.Add(sources...), nil
}
