package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/ir"
)

func sel(vals ...ir.IRValue) collection.Selection {
	items := make([]collection.Item, len(vals))
	for i, v := range vals {
		items[i] = collection.Item{ID: string(rune('a' + i)), Result: collection.Result{Value: v}}
	}
	return collection.NewSelection(items...)
}

func circular(id string) collection.Selection {
	return collection.NewSelection(collection.Item{
		ID:     id,
		Kind:   collection.KindDerived,
		Result: collection.Result{Err: &collection.DerivationError{Code: collection.CodeCircular, ID: id}},
	})
}

func TestSum(t *testing.T) {
	got, err := Sum(sel(ir.Ints(1, 2, 3)), sel(ir.IRInt(4), ir.IRObject{"data": ir.Ints(5)}))
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(15), got)
}

func TestSum_Empty(t *testing.T) {
	got, err := Sum()
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(0), got)
}

func TestSum_NullContributesNothing(t *testing.T) {
	got, err := Sum(sel(ir.IRNull{}, ir.IRInt(2)))
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(2), got)
}

func TestSum_NotNumeric(t *testing.T) {
	_, err := Sum(sel(ir.IRString("x")))
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = Sum(sel(ir.IRObject{"label": ir.IRString("x")}))
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestNumericTransformsPropagateUpstreamErrors(t *testing.T) {
	for name, fn := range map[string]collection.DeriveFunc{
		"sum": Sum, "min": Min, "max": Max, "concat": Concat,
		"first": First, "last": Last, "merge": Merge,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fn(sel(ir.IRInt(1)), circular("C"))
			assert.True(t, collection.IsCircular(err), "got %v", err)
		})
	}
}

func TestCount(t *testing.T) {
	got, err := Count(sel(ir.IRInt(1), ir.IRInt(2)), circular("C"), sel())
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(3), got)
}

func TestMinMax(t *testing.T) {
	in := []collection.Selection{sel(ir.Ints(4, -2, 9)), sel(ir.IRInt(3))}

	lo, err := Min(in...)
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(-2), lo)

	hi, err := Max(in...)
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(9), hi)

	none, err := Max(sel())
	require.NoError(t, err)
	assert.Equal(t, ir.IRNull{}, none)
}

func TestConcat(t *testing.T) {
	got, err := Concat(
		sel(ir.Ints(1, 2)),
		sel(ir.IRObject{"data": ir.Strings("x")}, ir.IRBool(true)),
	)
	require.NoError(t, err)
	assert.Equal(t, ir.IRArray{ir.IRInt(1), ir.IRInt(2), ir.IRString("x"), ir.IRBool(true)}, got)
}

func TestConcat_EmptyIsEmptyArray(t *testing.T) {
	got, err := Concat()
	require.NoError(t, err)
	assert.Equal(t, ir.IRArray{}, got)
}

func TestFirstLast(t *testing.T) {
	in := []collection.Selection{sel(ir.IRString("a")), sel(ir.IRString("b"), ir.IRString("c"))}

	first, err := First(in...)
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("a"), first)

	last, err := Last(in...)
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("c"), last)

	empty, err := First()
	require.NoError(t, err)
	assert.Equal(t, ir.IRNull{}, empty)
}

func TestMerge(t *testing.T) {
	got, err := Merge(
		sel(ir.IRObject{"a": ir.IRInt(1), "b": ir.IRInt(2)}),
		sel(ir.IRObject{"b": ir.IRInt(3)}),
	)
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{"a": ir.IRInt(1), "b": ir.IRInt(3)}, got)

	_, err = Merge(sel(ir.Ints(1)))
	assert.True(t, errors.Is(err, ErrNotObject))
}

func TestTransformsInsideCollection(t *testing.T) {
	c := collection.New()
	c.Add(
		&collection.Raw{ID: "A", Data: ir.Ints(1, 2, 3)},
		&collection.Derived{ID: "B", Sources: collection.Literal("A"), Derive: Sum},
		&collection.Derived{ID: "C", Sources: collection.Literal("A,B"), Derive: Concat},
	)
	c.UpdateDerivations()

	b, _ := c.Get("B")
	assert.Equal(t, ir.IRInt(6), b.Value)
	cv, _ := c.Get("C")
	assert.Equal(t, ir.IRArray{ir.IRInt(1), ir.IRInt(2), ir.IRInt(3), ir.IRInt(6)}, cv.Value)
}
