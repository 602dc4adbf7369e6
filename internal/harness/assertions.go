package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atom122158003/pandyle/internal/engine"
	"github.com/atom122158003/pandyle/internal/value"
)

// Expectation kinds reported in AssertionError.
const (
	AssertHTML      = "html"
	AssertContains  = "contains"
	AssertExcludes  = "excludes"
	AssertRenders   = "renders"
	AssertRelations = "relations"
	AssertGet       = "get"
)

// AssertionError is returned when an expectation fails.
// It includes the frame markup to help debug the failure.
type AssertionError struct {
	Type     string // Expectation kind for categorization
	Step     int    // Frame the expectation was checked against
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	HTML     string // Frame markup for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed at step %d: %s\n", e.Step, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nMarkup:\n  %s\n", e.HTML)
	return buf.String()
}

// CheckExpectation evaluates exp against frame, reading get paths through
// eng. A nil expectation always passes.
func CheckExpectation(eng *engine.Engine, frame Frame, exp *Expectation) []error {
	if exp == nil {
		return nil
	}
	var errs []error
	fail := func(kind, expected, actual string) {
		errs = append(errs, &AssertionError{
			Type:     kind,
			Step:     frame.Step,
			Expected: expected,
			Actual:   actual,
			HTML:     frame.HTML,
		})
	}

	if exp.HTML != "" && exp.HTML != frame.HTML {
		fail(AssertHTML, exp.HTML, frame.HTML)
	}
	for _, s := range exp.Contains {
		if !strings.Contains(frame.HTML, s) {
			fail(AssertContains, fmt.Sprintf("markup containing %q", s), "not found")
		}
	}
	for _, s := range exp.Excludes {
		if strings.Contains(frame.HTML, s) {
			fail(AssertExcludes, fmt.Sprintf("markup without %q", s), "found")
		}
	}
	if exp.Renders != nil && *exp.Renders != frame.Renders {
		fail(AssertRenders, fmt.Sprintf("%d renders", *exp.Renders), fmt.Sprintf("%d renders", frame.Renders))
	}
	if exp.Relations != nil && !slices.Equal(exp.Relations, frame.Relations) {
		fail(AssertRelations, fmt.Sprint(exp.Relations), fmt.Sprint(frame.Relations))
	}
	for _, path := range sortedKeys(exp.Get) {
		got, err := eng.Get(path)
		if err != nil {
			fail(AssertGet, fmt.Sprintf("%s readable", path), err.Error())
			continue
		}
		want := canonical(exp.Get[path])
		if actual := canonical(got); actual != want {
			fail(AssertGet, fmt.Sprintf("%s = %s", path, want), actual)
		}
	}
	return errs
}

// canonical renders v as canonical JSON so numbers compare by value
// regardless of their Go type.
func canonical(v any) string {
	b, err := value.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}
