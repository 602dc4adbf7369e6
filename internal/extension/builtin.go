package extension

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/atom122158003/pandyle/internal/value"
)

// ErrNotFound is returned when a named extension is not registered.
var ErrNotFound = errors.New("extension not found")

// Builtins returns the standard methods: upper, lower, title, trim, len,
// join and concat.
func Builtins() map[string]any {
	return map[string]any{
		"upper": func(v any) string { return strings.ToUpper(value.String(v)) },
		"lower": func(v any) string { return strings.ToLower(value.String(v)) },
		"title": func(v any) string { return cases.Title(language.Und).String(value.String(v)) },
		"trim":  func(v any) string { return strings.TrimSpace(value.String(v)) },
		"len": func(v any) int {
			n, _ := value.Len(v)
			return n
		},
		"join": func(v any, sep string) string {
			elems := value.Elements(v)
			parts := make([]string, len(elems))
			for i, e := range elems {
				parts[i] = value.String(e)
			}
			return strings.Join(parts, sep)
		},
		"concat": func(parts ...any) string {
			var b strings.Builder
			for _, p := range parts {
				b.WriteString(value.String(p))
			}
			return b.String()
		},
	}
}

// RegisterBuiltins adds Builtins to r as methods.
func RegisterBuiltins(r *Registry) error {
	for name, fn := range Builtins() {
		if err := r.AddMethod(name, fn); err != nil {
			return err
		}
	}
	return nil
}
