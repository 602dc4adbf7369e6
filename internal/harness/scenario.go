package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Template is the markup to bind.
	Template string `yaml:"template"`

	// Data is the initial data tree.
	Data map[string]any `yaml:"data,omitempty"`

	// DataFile loads the initial data tree from a json, yaml, cue or
	// msgpack file instead. Relative paths are resolved against the
	// scenario file's directory.
	DataFile string `yaml:"data_file,omitempty"`

	// Components maps component names to markup for <c name="..."> placeholders.
	Components map[string]string `yaml:"components,omitempty"`

	// Expect is checked after the first render.
	Expect *Expectation `yaml:"expect,omitempty"`

	// Steps are applied in order after the first render.
	Steps []Step `yaml:"steps,omitempty"`

	// PassToken is an optional fixed pass token.
	// If empty, testutil.DefaultPassToken is used.
	PassToken string `yaml:"pass_token,omitempty"`
}

// Step is one engine.Set call and the expectations that follow it.
type Step struct {
	// Set maps write paths to new values.
	Set map[string]any `yaml:"set"`

	// Expect is checked after the write. Nil means no checks.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Expectation describes the state of one frame. Unset fields are not
// checked.
type Expectation struct {
	HTML      string         `yaml:"html,omitempty"`
	Contains  []string       `yaml:"contains,omitempty"`
	Excludes  []string       `yaml:"excludes,omitempty"`
	Renders   *int64         `yaml:"renders,omitempty"`
	Relations []string       `yaml:"relations,omitempty"`
	Get       map[string]any `yaml:"get,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.DataFile != "" && !filepath.IsAbs(scenario.DataFile) {
		scenario.DataFile = filepath.Join(filepath.Dir(path), scenario.DataFile)
	}
	if scenario.DataFile != "" {
		if _, err := os.Stat(scenario.DataFile); err != nil {
			return nil, fmt.Errorf("invalid scenario: data file: %w", err)
		}
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "step:" vs "steps:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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
	if s.Template == "" {
		return fmt.Errorf("template is required")
	}
	if s.Data != nil && s.DataFile != "" {
		return fmt.Errorf("data and data_file are mutually exclusive")
	}
	for i, step := range s.Steps {
		if len(step.Set) == 0 {
			return fmt.Errorf("steps[%d]: set is required and must be non-empty", i)
		}
		if err := validateExpectation(step.Expect); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", i, err)
		}
	}
	if err := validateExpectation(s.Expect); err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	return nil
}

func validateExpectation(e *Expectation) error {
	if e == nil {
		return nil
	}
	if e.Renders != nil && *e.Renders < 0 {
		return fmt.Errorf("renders must be non-negative")
	}
	for _, s := range e.Contains {
		if s == "" {
			return fmt.Errorf("contains entries must be non-empty")
		}
	}
	return nil
}
