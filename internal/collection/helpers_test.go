package collection

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/glimpse/internal/ir"
)

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Notify(ev Event) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func newTestCollection(opts ...Option) *Collection {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

// sumInts adds every int found in the first selection's payloads,
// descending into arrays.
func sumInts(inputs ...Selection) (ir.IRValue, error) {
	var total int64
	for _, sel := range inputs {
		if err := sel.Err(); err != nil {
			return nil, err
		}
		for _, v := range sel.Values() {
			n, err := sumValue(v)
			if err != nil {
				return nil, err
			}
			total += n
		}
	}
	return ir.IRInt(total), nil
}

func sumValue(v ir.IRValue) (int64, error) {
	switch val := v.(type) {
	case ir.IRInt:
		return int64(val), nil
	case ir.IRArray:
		var total int64
		for _, elem := range val {
			n, err := sumValue(elem)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
}

// countItems returns the number of items in each selection.
func countItems(inputs ...Selection) (ir.IRValue, error) {
	arr := make(ir.IRArray, len(inputs))
	for i, sel := range inputs {
		arr[i] = ir.IRInt(sel.Len())
	}
	return arr, nil
}

func mustGet(c *Collection, id string) Result {
	res, ok := c.Get(id)
	if !ok {
		panic("missing source " + id)
	}
	return res
}
