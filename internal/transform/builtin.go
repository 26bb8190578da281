package transform

import (
	"errors"
	"fmt"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/ir"
)

var (
	// ErrNotNumeric means an input held a value no numeric transform can read.
	ErrNotNumeric = errors.New("value is not numeric")

	// ErrNotObject means merge received a value that is not an object.
	ErrNotObject = errors.New("value is not an object")
)

// values returns every value of every selection, in order, or the first
// error result found.
func values(inputs []collection.Selection) ([]ir.IRValue, error) {
	var out []ir.IRValue
	for _, sel := range inputs {
		if err := sel.Err(); err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		out = append(out, sel.Values()...)
	}
	return out, nil
}

// ints flattens the numeric content of vals.
func ints(vals []ir.IRValue) ([]int64, error) {
	var out []int64
	var walk func(v ir.IRValue) error
	walk = func(v ir.IRValue) error {
		switch val := v.(type) {
		case ir.IRInt:
			out = append(out, int64(val))
		case ir.IRArray:
			for _, elem := range val {
				if err := walk(elem); err != nil {
					return err
				}
			}
		case ir.IRObject:
			data, ok := val["data"]
			if !ok {
				return fmt.Errorf("%w: object without data", ErrNotNumeric)
			}
			return walk(data)
		case ir.IRNull:
		default:
			return fmt.Errorf("%w: %T", ErrNotNumeric, v)
		}
		return nil
	}
	for _, v := range vals {
		if err := walk(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func numeric(inputs []collection.Selection) ([]int64, error) {
	vals, err := values(inputs)
	if err != nil {
		return nil, err
	}
	return ints(vals)
}

// Sum adds every number in the inputs.
func Sum(inputs ...collection.Selection) (ir.IRValue, error) {
	ns, err := numeric(inputs)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range ns {
		total += n
	}
	return ir.IRInt(total), nil
}

// Count returns the number of selected sources, error results included.
func Count(inputs ...collection.Selection) (ir.IRValue, error) {
	n := 0
	for _, sel := range inputs {
		n += sel.Len()
	}
	return ir.IRInt(n), nil
}

// Min returns the smallest number in the inputs, or null if there is none.
func Min(inputs ...collection.Selection) (ir.IRValue, error) {
	return extreme(inputs, func(a, b int64) bool { return a < b })
}

// Max returns the largest number in the inputs, or null if there is none.
func Max(inputs ...collection.Selection) (ir.IRValue, error) {
	return extreme(inputs, func(a, b int64) bool { return a > b })
}

func extreme(inputs []collection.Selection, better func(a, b int64) bool) (ir.IRValue, error) {
	ns, err := numeric(inputs)
	if err != nil {
		return nil, err
	}
	if len(ns) == 0 {
		return ir.IRNull{}, nil
	}
	best := ns[0]
	for _, n := range ns[1:] {
		if better(n, best) {
			best = n
		}
	}
	return ir.IRInt(best), nil
}

// Concat flattens the inputs one level into a single array. Array values
// and the "data" array of objects contribute their elements; any other
// value contributes itself.
func Concat(inputs ...collection.Selection) (ir.IRValue, error) {
	vals, err := values(inputs)
	if err != nil {
		return nil, err
	}
	out := ir.IRArray{}
	for _, v := range vals {
		switch val := v.(type) {
		case ir.IRArray:
			out = append(out, val...)
		case ir.IRObject:
			if data, ok := val["data"].(ir.IRArray); ok {
				out = append(out, data...)
				continue
			}
			out = append(out, val)
		default:
			out = append(out, val)
		}
	}
	return out, nil
}

// First returns the first selected value, or null.
func First(inputs ...collection.Selection) (ir.IRValue, error) {
	vals, err := values(inputs)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return ir.IRNull{}, nil
	}
	return vals[0], nil
}

// Last returns the last selected value, or null.
func Last(inputs ...collection.Selection) (ir.IRValue, error) {
	vals, err := values(inputs)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return ir.IRNull{}, nil
	}
	return vals[len(vals)-1], nil
}

// Merge combines object values key by key. Later values win.
func Merge(inputs ...collection.Selection) (ir.IRValue, error) {
	vals, err := values(inputs)
	if err != nil {
		return nil, err
	}
	out := ir.IRObject{}
	for _, v := range vals {
		obj, ok := v.(ir.IRObject)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrNotObject, v)
		}
		for k, elem := range obj {
			out[k] = elem
		}
	}
	return out, nil
}
