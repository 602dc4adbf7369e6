package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPath is returned for paths that cannot be split into steps.
var ErrMalformedPath = errors.New("malformed path")

// Step is one hop through the tree: either a key or an index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Step) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Steps splits path into its key and index steps. Dotted segments made only
// of digits are treated as indices.
func Steps(path string) ([]Step, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	var steps []Step
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrMalformedPath, path)
		}
		key, rest, _ := strings.Cut(seg, "[")
		if key != "" {
			if n, err := strconv.Atoi(key); err == nil && isDigits(key) {
				steps = append(steps, Step{Index: n, IsIndex: true})
			} else {
				steps = append(steps, Step{Key: key})
			}
		}
		if !strings.Contains(seg, "[") {
			continue
		}
		rest = "[" + rest
		for rest != "" {
			if rest[0] != '[' {
				return nil, fmt.Errorf("%w: unexpected %q in %q", ErrMalformedPath, rest, path)
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed index in %q", ErrMalformedPath, path)
			}
			inner := strings.TrimSpace(rest[1:end])
			n, err := strconv.Atoi(inner)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad index %q in %q", ErrMalformedPath, inner, path)
			}
			steps = append(steps, Step{Index: n, IsIndex: true})
			rest = rest[end+1:]
		}
	}
	return steps, nil
}

// Join renders steps in canonical form: keys joined by dots, indices in
// brackets.
func Join(steps []Step) string {
	var b strings.Builder
	for i, s := range steps {
		if !s.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Canonical rewrites path into canonical form (items.0.name → items[0].name).
func Canonical(path string) (string, error) {
	steps, err := Steps(path)
	if err != nil {
		return "", err
	}
	return Join(steps), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
