package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "every assertion is wrong",
		Sources: mustDecls(t, `
- id: A
  data: [1, 2]
- id: B
  sources: [A]
  derive: sum
`),
		Steps: []Step{{Op: OpPass}},
		Assertions: []Assertion{
			{Type: AssertValue, ID: "B", Expect: 4},
			{Type: AssertError, ID: "B", Code: "gl-error-circular-dependency"},
			{Type: AssertResolve, Selector: "A", IDs: []string{"B"}},
			{Type: AssertValue, ID: "missing", Expect: 1},
			{Type: AssertCycles, Cycles: [][]string{{"A"}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "assertions[0] failed: value")
	assert.Contains(t, result.Errors[0], "Expected: 4")
	assert.Contains(t, result.Errors[0], "Actual: 3")
	assert.Contains(t, result.Errors[1], "Actual: value 3")
	assert.Contains(t, result.Errors[2], `Expected: ["B"]`)
	assert.Contains(t, result.Errors[3], `no source "missing"`)
	assert.Contains(t, result.Errors[4], "cycles")
}

func TestRun_StepErrorsAbort(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad-append",
		Description: "appending to a scalar",
		Sources:     mustDecls(t, "- id: A\n  data: 1\n"),
		Steps:       []Step{{Op: OpAppend, ID: "A", Items: []any{2}}},
		Assertions:  []Assertion{{Type: AssertCycles}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0 (append)")
}

func TestRun_UpsertAndRemove(t *testing.T) {
	scenario := &Scenario{
		Name:        "upsert-remove",
		Description: "upsert replaces in place, remove drops",
		Sources: mustDecls(t, `
- id: A
  data: [1]
- id: B
  data: [2]
- id: S
  sources: ["*"]
  derive: sum
`),
		Steps: []Step{
			{Op: OpUpsert, Sources: mustDecls(t, "- id: A\n  data: [10]\n")},
			{Op: OpRemove, IDs: []string{"B"}},
			{Op: OpAddTags, ID: "A", Tags: []string{"x"}},
			{Op: OpRemoveTags, ID: "A", Tags: []string{"*"}},
			{Op: OpSetTags, ID: "S", Tags: []string{"+", "sum"}},
			{Op: OpPass},
		},
		Assertions: []Assertion{
			{Type: AssertValue, ID: "S", Expect: 0},
			{Type: AssertTags, ID: "A", Tags: []string{"+", "x"}},
			{Type: AssertResolve, Selector: "sum", IDs: []string{"S"}},
			{Type: AssertSelect, Selector: "x", IDs: []string{"A"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion failures: %v", result.Errors)

	ids := make([]string, len(result.Final))
	for i, r := range result.Final {
		ids[i] = r.SourceID
	}
	assert.Equal(t, []string{"A", "S"}, ids)
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "description: d\nsources: [{id: A}]\nassertions: [{type: cycles}]\n", "name is required"},
		{"no sources", "name: n\ndescription: d\nassertions: [{type: cycles}]\n", "manifest or sources is required"},
		{"unknown op", "name: n\ndescription: d\nsources: [{id: A}]\nsteps: [{op: explode}]\nassertions: [{type: cycles}]\n", `unknown op "explode"`},
		{"unknown field", "name: n\ndescription: d\nsources: [{id: A}]\nasserts: []\n", "field asserts not found"},
		{"empty needs bool", "name: n\ndescription: d\nsources: [{id: A}]\nassertions: [{type: empty, expect: maybe}]\n", "expect must be true or false"},
		{"missing manifest", "name: n\ndescription: d\nmanifest: nowhere.yaml\nassertions: [{type: cycles}]\n", "manifest file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_ResolvesManifestPath(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/totals.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "manifests", "totals.yaml"), s.Manifest)
}
