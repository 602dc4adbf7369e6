package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/a-h/templ"

	"github.com/atom122158003/pandyle/internal/component"
	"github.com/atom122158003/pandyle/internal/document"
	"github.com/atom122158003/pandyle/internal/dom"
	"github.com/atom122158003/pandyle/internal/engine"
	"github.com/atom122158003/pandyle/internal/extension"
	"github.com/atom122158003/pandyle/internal/testutil"
)

// Harness runs one scenario against a fresh engine.
type Harness struct {
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	result *Result
}

// Run executes a test scenario and returns the result.
//
// Each scenario binds a copy of its data, so a Scenario value can be run
// repeatedly. Render failures and unmet expectations are reported in the
// result; the returned error covers setup problems only (unreadable data
// file, unparsable template).
//
// Execution flow:
// 1. Load data and parse the template
// 2. Register components and builtin extensions
// 3. Run the first render and check Expect
// 4. Apply each step through engine.Set and check its Expect
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	data, err := scenarioData(scenario)
	if err != nil {
		return nil, err
	}
	root, err := dom.ParseFragmentString(scenario.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	ext := extension.NewRegistry()
	if err := extension.RegisterBuiltins(ext); err != nil {
		return nil, fmt.Errorf("failed to register builtins: %w", err)
	}
	clock := testutil.NewDeterministicClock()
	opts := []engine.Option{
		engine.WithClock(clock),
		engine.WithPassTokenGenerator(testutil.NewFixedPassGenerator(scenario.PassToken)),
		engine.WithGlobalExtensions(ext),
	}
	if len(scenario.Components) > 0 {
		reg := component.NewRegistry()
		for name, markup := range scenario.Components {
			reg.Add(name, templ.Raw(markup))
		}
		opts = append(opts, engine.WithLoader(reg))
	}

	h := &Harness{
		engine: engine.New(root, data, opts...),
		clock:  clock,
		result: NewResult(),
	}
	slog.Debug("scenario start", "scenario", scenario.Name, "steps", len(scenario.Steps))

	if err := h.engine.Run(ctx); err != nil {
		h.result.AddError(fmt.Sprintf("first render: %v", err))
		return h.result, nil
	}
	h.record(0, nil, scenario.Expect)

	for i, step := range scenario.Steps {
		h.clock.Reset()
		if err := h.engine.Set(ctx, clone(step.Set).(map[string]any)); err != nil {
			h.result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
			break
		}
		h.record(i+1, step.Set, step.Expect)
	}

	slog.Debug("scenario complete", "scenario", scenario.Name, "pass", h.result.Pass)
	return h.result, nil
}

// record captures a frame and checks exp against it.
func (h *Harness) record(step int, set map[string]any, exp *Expectation) {
	out, err := h.engine.HTML()
	if err != nil {
		h.result.AddError(fmt.Sprintf("step %d: render markup: %v", step, err))
		return
	}
	frame := Frame{
		Step:      step,
		HTML:      out,
		Renders:   h.clock.Current(),
		Relations: h.engine.Relations().Paths(),
	}
	if set != nil {
		frame.Set = clone(set).(map[string]any)
	}
	h.result.AddFrame(frame)

	for _, err := range CheckExpectation(h.engine, frame, exp) {
		h.result.AddError(err.Error())
	}
}

// scenarioData returns a private copy of the scenario's initial data.
func scenarioData(s *Scenario) (any, error) {
	if s.DataFile != "" {
		v, err := document.Load(s.DataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load data: %w", err)
		}
		return v, nil
	}
	if s.Data == nil {
		return map[string]any{}, nil
	}
	return clone(s.Data), nil
}

// clone deep-copies the maps and slices of a decoded data tree.
func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = clone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	}
	return v
}

// sortedKeys returns the keys of m in order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
