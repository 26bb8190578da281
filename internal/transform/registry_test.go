package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/glimpse/internal/collection"
	"github.com/roach88/glimpse/internal/ir"
)

func TestDefault_Names(t *testing.T) {
	assert.Equal(t,
		[]string{"concat", "count", "first", "last", "max", "merge", "min", "sum"},
		Default().Names())
}

func TestLookup(t *testing.T) {
	r := Default()

	fn, err := r.Lookup("sum")
	require.NoError(t, err)
	got, err := fn()
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(0), got)

	_, err = r.Lookup("median")
	assert.ErrorIs(t, err, ErrUnknown)
	assert.Contains(t, err.Error(), `"median"`)
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	double := func(inputs ...collection.Selection) (ir.IRValue, error) {
		v, err := Sum(inputs...)
		if err != nil {
			return nil, err
		}
		return v.(ir.IRInt) * 2, nil
	}

	require.NoError(t, r.Register("double", double))
	assert.ErrorIs(t, r.Register("double", double), ErrDuplicate)
	assert.Error(t, r.Register("", double))
	assert.Error(t, r.Register("nil", nil))
	assert.Equal(t, []string{"double"}, r.Names())
}

func TestDefault_IsIndependent(t *testing.T) {
	a := Default()
	require.NoError(t, a.Register("extra", Sum))
	_, err := Default().Lookup("extra")
	assert.ErrorIs(t, err, ErrUnknown)
}
