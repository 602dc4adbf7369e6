// Package testutil holds deterministic collaborators and small helpers
// shared by package tests and the conformance harness.
package testutil

// FixedPassGenerator returns the same pass token every time, so log output
// and traces from repeated runs are identical.
//
// Thread-safety: FixedPassGenerator is stateless and safe for concurrent use.
type FixedPassGenerator struct {
	token string
}

// DefaultPassToken is used when NewFixedPassGenerator gets an empty token.
const DefaultPassToken = "test-pass-default"

// NewFixedPassGenerator creates a generator that always returns token.
func NewFixedPassGenerator(token string) *FixedPassGenerator {
	if token == "" {
		token = DefaultPassToken
	}
	return &FixedPassGenerator{token: token}
}

// Generate returns the fixed token.
func (g *FixedPassGenerator) Generate() string {
	return g.token
}
