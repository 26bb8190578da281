package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/glimpse/internal/manifest"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Manifest is an optional manifest file loaded first.
	// Relative paths are resolved against the scenario file's directory.
	Manifest string `yaml:"manifest,omitempty"`

	// Sources are inline declarations added after the manifest.
	Sources []manifest.Decl `yaml:"sources,omitempty"`

	// Steps run in order after the collection is built.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation on the collection.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	ID      string          `yaml:"id,omitempty"`
	IDs     []string        `yaml:"ids,omitempty"`
	Items   []any           `yaml:"items,omitempty"`
	Tags    []string        `yaml:"tags,omitempty"`
	Scope   string          `yaml:"scope,omitempty"`
	Sources []manifest.Decl `yaml:"sources,omitempty"`
}

// Step operations.
const (
	OpPass       = "pass"
	OpAdd        = "add"
	OpUpsert     = "upsert"
	OpExtend     = "extend"
	OpAppend     = "append"
	OpRemove     = "remove"
	OpSetTags    = "set_tags"
	OpAddTags    = "add_tags"
	OpRemoveTags = "remove_tags"
	OpToggleTags = "toggle_tags"
)

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	ID       string `yaml:"id,omitempty"`
	Selector string `yaml:"selector,omitempty"`

	// Expect is the expected value (value) or emptiness (empty).
	Expect any `yaml:"expect,omitempty"`

	// Code is the expected DerivationError code (error).
	Code string `yaml:"code,omitempty"`

	IDs    []string   `yaml:"ids,omitempty"`
	Tags   []string   `yaml:"tags,omitempty"`
	Topics []string   `yaml:"topics,omitempty"`
	Cycles [][]string `yaml:"cycles,omitempty"`
}

// Assertion types.
const (
	AssertValue   = "value"   // Get(id) carries Expect
	AssertError   = "error"   // Get(id) carries an error with Code
	AssertResolve = "resolve" // Resolve(Selector) returns IDs
	AssertSelect  = "select"  // Select(Selector) yields IDs
	AssertTags    = "tags"    // GetTags(id) equals Tags
	AssertEmpty   = "empty"   // IsEmpty(Selector) equals Expect
	AssertEvents  = "events"  // notifier topics equal Topics
	AssertCycles  = "cycles"  // last pass found Cycles
)

// LoadScenario reads and parses a scenario YAML file, resolving the
// manifest path relative to the scenario file. Unknown fields (typos) and
// missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Manifest != "" && !filepath.IsAbs(scenario.Manifest) {
		scenario.Manifest = filepath.Join(filepath.Dir(path), scenario.Manifest)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files directly under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Manifest == "" && len(s.Sources) == 0 {
		return fmt.Errorf("manifest or sources is required")
	}
	if s.Manifest != "" {
		if _, err := os.Stat(s.Manifest); os.IsNotExist(err) {
			return fmt.Errorf("manifest file not found: %s", s.Manifest)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, st Step) error {
	switch st.Op {
	case OpPass:
	case OpAdd, OpUpsert, OpExtend:
		if len(st.Sources) == 0 {
			return fmt.Errorf("steps[%d]: sources is required for %s", i, st.Op)
		}
		if st.Op != OpAdd && len(st.Sources) != 1 {
			return fmt.Errorf("steps[%d]: %s takes exactly one source", i, st.Op)
		}
	case OpAppend:
		if st.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for append", i)
		}
	case OpRemove:
		if len(st.IDs) == 0 {
			return fmt.Errorf("steps[%d]: ids is required for remove", i)
		}
	case OpSetTags, OpAddTags, OpRemoveTags, OpToggleTags:
		if st.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for %s", i, st.Op)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", i)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", i, st.Op)
	}
	return nil
}

func validateAssertion(i int, a Assertion) error {
	switch a.Type {
	case AssertValue:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for value", i)
		}
	case AssertError:
		if a.ID == "" || a.Code == "" {
			return fmt.Errorf("assertions[%d]: id and code are required for error", i)
		}
	case AssertResolve, AssertSelect:
		if a.Selector == "" {
			return fmt.Errorf("assertions[%d]: selector is required for %s", i, a.Type)
		}
	case AssertTags:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for tags", i)
		}
	case AssertEmpty:
		if _, ok := a.Expect.(bool); !ok {
			return fmt.Errorf("assertions[%d]: expect must be true or false for empty", i)
		}
	case AssertEvents, AssertCycles:
	case "":
		return fmt.Errorf("assertions[%d]: type is required", i)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	return nil
}
