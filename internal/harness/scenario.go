package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Gate expectation values.
const (
	GatePass  = "pass"
	GateBlock = "block"
)

// Scenario defines one conformance test scenario: a function spec, the
// plan documents serving each candidate slot, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Spec is the path to the CUE spec file, relative to the scenario file.
	Spec string `yaml:"spec"`

	// Function selects a declaration when the spec file holds several.
	// Empty means the file's first declaration.
	Function string `yaml:"function,omitempty"`

	// Plans lists plan document paths, one per candidate slot, relative
	// to the scenario file. Required unless the gate is expected to block.
	Plans []string `yaml:"plans,omitempty"`

	// Expect declares the outcome the scenario asserts.
	Expect Expectation `yaml:"expect"`
}

// Expectation is the declared outcome of a scenario.
type Expectation struct {
	// Gate is "pass" or "block".
	Gate string `yaml:"gate"`

	// Issues lists the expected issue kinds in report order.
	// Empty means no expectation over issues, not "no issues".
	Issues []string `yaml:"issues,omitempty"`

	// BestIndex, when set, is the slot the winning candidate must hold.
	BestIndex *int `yaml:"best_index,omitempty"`

	// BestScore, when set, is the winning score formatted to three
	// decimals (e.g. "0.750").
	BestScore string `yaml:"best_score,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Spec and plan paths
// are resolved relative to the scenario file location.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expect:" vs "expects:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve referenced paths relative to the scenario file
	base := filepath.Dir(path)
	if scenario.Spec != "" && !filepath.IsAbs(scenario.Spec) {
		scenario.Spec = filepath.Join(base, scenario.Spec)
	}
	for i, planPath := range scenario.Plans {
		if !filepath.IsAbs(planPath) {
			scenario.Plans[i] = filepath.Join(base, planPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if _, err := os.Stat(s.Spec); os.IsNotExist(err) {
		return fmt.Errorf("spec file not found: %s", s.Spec)
	}

	switch s.Expect.Gate {
	case GatePass, GateBlock:
	case "":
		return fmt.Errorf("expect.gate is required")
	default:
		return fmt.Errorf("expect.gate must be %q or %q, got %q", GatePass, GateBlock, s.Expect.Gate)
	}

	if s.Expect.Gate == GatePass && len(s.Plans) == 0 {
		return fmt.Errorf("plans list is required when the gate is expected to pass")
	}

	for i, planPath := range s.Plans {
		if _, err := os.Stat(planPath); os.IsNotExist(err) {
			return fmt.Errorf("plans[%d]: plan file not found: %s", i, planPath)
		}
	}

	if s.Expect.BestIndex != nil && *s.Expect.BestIndex < 0 {
		return fmt.Errorf("expect.best_index must be non-negative")
	}

	return nil
}
