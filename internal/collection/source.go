package collection

import (
	"github.com/roach88/glimpse/internal/ir"
	"github.com/roach88/glimpse/internal/tagset"
)

// Reserved tags.
const (
	// TagRaw is carried by raw sources unless the caller sets tags explicitly.
	TagRaw = "*"

	// TagAll is carried by every source unless the caller sets tags explicitly.
	TagAll = "+"
)

// Kind distinguishes raw from derived records.
type Kind int

const (
	KindRaw Kind = iota
	KindDerived
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindDerived:
		return "derived"
	default:
		return "unknown"
	}
}

// DeriveFunc computes a derived value. It receives one Selection per
// selector group of the derived source, in group order.
type DeriveFunc func(inputs ...Selection) (ir.IRValue, error)

// Source is a record definition passed to Add and Upsert.
// Only *Raw and *Derived implement it.
type Source interface {
	SourceID() string
	source()
}

// Raw is a source holding caller data directly.
// Nil Tags means the defaults {*, +}.
type Raw struct {
	ID   string
	Data ir.IRValue
	Tags []string
}

func (r *Raw) SourceID() string { return r.ID }
func (*Raw) source()            {}

// Derived is a source whose value is computed from the sources its
// selector picks. Nil Tags means the default {+}.
type Derived struct {
	ID      string
	Sources Selector
	Derive  DeriveFunc
	Tags    []string
}

func (d *Derived) SourceID() string { return d.ID }
func (*Derived) source()            {}

// Patch carries the fields Extend merges into an existing record.
// Zero-valued fields are left untouched. An empty Tags slice counts as
// zero, so Extend cannot clear tags; use SetTags for that.
type Patch struct {
	ID      string
	Data    ir.IRValue
	Sources Selector
	Derive  DeriveFunc
	Tags    []string
}

func (p Patch) isDerived() bool {
	return p.Sources != nil || p.Derive != nil
}

func (p Patch) source() Source {
	if p.isDerived() {
		return &Derived{ID: p.ID, Sources: p.Sources, Derive: p.Derive, Tags: p.Tags}
	}
	return &Raw{ID: p.ID, Data: p.Data, Tags: p.Tags}
}

// record is the stored form of a Source. Records never leave the package;
// callers see copies of their data through Get and Select.
type record struct {
	id   string
	kind Kind
	tags *tagset.Set

	// raw
	data ir.IRValue

	// derived
	sources Selector
	derive  DeriveFunc
	cached  *Result // nil until the first pass
}

func newRecord(src Source) *record {
	switch s := src.(type) {
	case *Raw:
		tags := s.Tags
		if tags == nil {
			tags = []string{TagRaw, TagAll}
		}
		data := ir.Clone(s.Data)
		if data == nil {
			data = ir.IRNull{}
		}
		return &record{
			id:   s.ID,
			kind: KindRaw,
			tags: tagset.New(tags...),
			data: data,
		}
	case *Derived:
		tags := s.Tags
		if tags == nil {
			tags = []string{TagAll}
		}
		return &record{
			id:      s.ID,
			kind:    KindDerived,
			tags:    tagset.New(tags...),
			sources: s.Sources,
			derive:  s.Derive,
		}
	default:
		return nil
	}
}

// patch returns the record's current fields in Patch form for merging.
func (r *record) patch() Patch {
	return Patch{
		ID:      r.id,
		Data:    r.data,
		Sources: r.sources,
		Derive:  r.derive,
		Tags:    r.tags.Slice(),
	}
}

// result returns a copy of the record's resolved value.
func (r *record) result() Result {
	if r.kind == KindRaw {
		return Result{Value: ir.Clone(r.data)}
	}
	if r.cached == nil {
		return Result{Err: &DerivationError{Code: CodeNotComputed, ID: r.id}}
	}
	return r.cached.clone()
}
