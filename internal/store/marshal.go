package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/glimpse/internal/ir"
)

// marshalValue converts an IRValue to canonical JSON TEXT for storage.
func marshalValue(v ir.IRValue) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// unmarshalValue parses canonical JSON TEXT into an IRValue.
// Integers keep full int64 precision.
func unmarshalValue(data string) (ir.IRValue, error) {
	v, err := ir.UnmarshalIRValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return v, nil
}

// marshalIDs stores an id list as a canonical JSON array. nil becomes [].
func marshalIDs(ids []string) (string, error) {
	return marshalValue(ir.Strings(ids...))
}

func marshalCycles(cycles [][]string) (string, error) {
	arr := make(ir.IRArray, len(cycles))
	for i, c := range cycles {
		arr[i] = ir.Strings(c...)
	}
	return marshalValue(arr)
}

func unmarshalIDs(data string) ([]string, error) {
	ids := []string{}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ids: %w", err)
	}
	return ids, nil
}

func unmarshalCycles(data string) ([][]string, error) {
	cycles := [][]string{}
	if err := json.Unmarshal([]byte(data), &cycles); err != nil {
		return nil, fmt.Errorf("unmarshal cycles: %w", err)
	}
	return cycles, nil
}
