package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	stdout, _, code := run(t, "select", "testdata/totals.yaml", "nums")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "A  [1,2,3]\nN  {\"data\":[10,20],\"label\":\"north\"}\n", stdout)
}

func TestSelect_DerivedValuesAreComputed(t *testing.T) {
	stdout, _, code := run(t, "--format", "json", "select", "testdata/totals.yaml", "totals,sizes")
	require.Equal(t, ExitSuccess, code)

	items := decode[SelectResult](t, stdout).Data.Items
	require.Len(t, items, 2)
	assert.Equal(t, "36", valueOf(t, items, "total"))
	assert.Equal(t, "3", valueOf(t, items, "sizes"))
	assert.Equal(t, "derived", items[0].Kind)
}

func TestSelect_KeepsDuplicates(t *testing.T) {
	stdout, _, code := run(t, "--format", "json", "select", "testdata/totals.yaml", "A,nums")
	require.Equal(t, ExitSuccess, code)

	items := decode[SelectResult](t, stdout).Data.Items
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"A", "A", "N"}, ids)
}

func TestSelect_NoMatch(t *testing.T) {
	stdout, _, code := run(t, "select", "testdata/totals.yaml", "nothing")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, `No sources match "nothing".`)
}

func TestResolve(t *testing.T) {
	stdout, _, code := run(t, "resolve", "testdata/totals.yaml", "A, totals")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "A\ntotal\n", stdout)

	stdout, _, code = run(t, "--format", "json", "resolve", "testdata/totals.yaml", "+")
	require.Equal(t, ExitSuccess, code)
	res := decode[ResolveResult](t, stdout).Data
	assert.Equal(t, "+", res.Selector)
	assert.Equal(t, []string{"A", "N", "total", "sizes"}, res.IDs)
}

func TestResolve_Empty(t *testing.T) {
	stdout, _, code := run(t, "--format", "json", "resolve", "testdata/totals.yaml", "nothing")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, []string{}, decode[ResolveResult](t, stdout).Data.IDs)
}
