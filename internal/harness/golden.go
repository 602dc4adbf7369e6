package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/atom122158003/pandyle/internal/value"
)

// Snapshot captures every frame of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string  `json:"scenario_name"`
	PassToken    string  `json:"pass_token,omitempty"`
	Frames       []Frame `json:"frames"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization, dropping empty optional fields.
func (s *Snapshot) toCanonicalMap() map[string]any {
	frames := make([]any, len(s.Frames))
	for i, f := range s.Frames {
		frame := map[string]any{
			"step":      f.Step,
			"html":      f.HTML,
			"renders":   f.Renders,
			"relations": f.Relations,
		}
		if f.Set != nil {
			frame["set"] = f.Set
		}
		frames[i] = frame
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"frames":        frames,
	}
	if s.PassToken != "" {
		result["pass_token"] = s.PassToken
	}
	return result
}

// MarshalSnapshot returns the canonical JSON of result's frames.
func MarshalSnapshot(name, passToken string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: name,
		PassToken:    passToken,
		Frames:       result.Frames,
	}
	return value.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its frames against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass; the error covers
// scenario setup and serialization failures. A mismatch fails t via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, scenario.PassToken, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name, passToken string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(name, passToken, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
