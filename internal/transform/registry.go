package transform

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/glimpse/internal/collection"
)

var (
	// ErrUnknown is returned by Lookup for a name with no registered transform.
	ErrUnknown = errors.New("unknown transform")

	// ErrDuplicate is returned by Register when the name is already taken.
	ErrDuplicate = errors.New("transform already registered")
)

// Registry maps transform names to derive functions.
type Registry struct {
	funcs map[string]collection.DeriveFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]collection.DeriveFunc)}
}

// Default returns a registry holding every built-in transform.
func Default() *Registry {
	r := NewRegistry()
	for name, fn := range builtins {
		r.funcs[name] = fn
	}
	return r
}

// Register adds fn under name.
func (r *Registry) Register(name string, fn collection.DeriveFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("register transform %q: empty name or nil function", name)
	}
	if _, ok := r.funcs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.funcs[name] = fn
	return nil
}

// Lookup returns the transform registered under name.
func (r *Registry) Lookup(name string) (collection.DeriveFunc, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return fn, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

var builtins = map[string]collection.DeriveFunc{
	"sum":    Sum,
	"count":  Count,
	"min":    Min,
	"max":    Max,
	"concat": Concat,
	"first":  First,
	"last":   Last,
	"merge":  Merge,
}
