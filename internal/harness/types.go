package harness

// Frame records the tree after the first render (Step 0) or after one write
// step (Step n for Steps[n-1]).
type Frame struct {
	Step      int            `json:"step"`
	Set       map[string]any `json:"set,omitempty"`
	HTML      string         `json:"html"`
	Renders   int64          `json:"renders"`
	Relations []string       `json:"relations"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched and no render failed.
	Pass bool `json:"pass"`

	// Frames holds one entry per completed pass, in order.
	Frames []Frame `json:"frames"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Frames: []Frame{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddFrame appends a frame.
func (r *Result) AddFrame(f Frame) {
	r.Frames = append(r.Frames, f)
}
