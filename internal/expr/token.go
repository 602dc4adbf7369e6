package expr

import (
	"regexp"
	"strings"
)

// tokenPattern matches `{{ expr }}`. The expression alphabet is limited to
// path characters, brackets, calls, arithmetic and whitespace.
var tokenPattern = regexp.MustCompile(`\{\{\s*([\w.\[\](),$@{}+\-*/\s]*?)\s*\}\}`)

// HasToken reports whether pattern contains at least one template token.
func HasToken(pattern string) bool {
	return tokenPattern.MatchString(pattern)
}

// Tokens returns the trimmed expressions of every token in pattern, in
// order of appearance.
func Tokens(pattern string) []string {
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatch(pattern, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// Expand replaces every token in pattern with fn(expr). Expansion stops at
// the first error.
func Expand(pattern string, fn func(expr string) (string, error)) (string, error) {
	locs := tokenPattern.FindAllStringSubmatchIndex(pattern, -1)
	if len(locs) == 0 {
		return pattern, nil
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(pattern[last:loc[0]])
		out, err := fn(strings.TrimSpace(pattern[loc[2]:loc[3]]))
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		last = loc[1]
	}
	b.WriteString(pattern[last:])
	return b.String(), nil
}
