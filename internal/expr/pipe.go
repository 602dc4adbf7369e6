package expr

import (
	"fmt"
	"regexp"
	"strings"
)

var spaces = regexp.MustCompile(`\s+`)

// DividePipe splits `path|method` into its parts with all whitespace
// removed. method is empty when there is no pipe.
func DividePipe(expression string) (path, method string) {
	path, method, _ = strings.Cut(expression, "|")
	return spaces.ReplaceAllString(path, ""), spaces.ReplaceAllString(method, "")
}

// Projection is one `key:path` pair of an object projection.
type Projection struct {
	Key  string
	Path string
}

// IsProjection reports whether method is an object projection `{...}`.
func IsProjection(method string) bool {
	return strings.HasPrefix(method, "{") && strings.HasSuffix(method, "}")
}

// ParseProjection parses `{k1:p1,k2:p2}`.
func ParseProjection(method string) ([]Projection, error) {
	if !IsProjection(method) {
		return nil, fmt.Errorf("%w: %q is not a projection", ErrSyntax, method)
	}
	body := strings.TrimSpace(method[1 : len(method)-1])
	if body == "" {
		return nil, nil
	}
	var out []Projection
	for _, pair := range strings.Split(body, ",") {
		key, path, ok := strings.Cut(pair, ":")
		key, path = strings.TrimSpace(key), strings.TrimSpace(path)
		if !ok || key == "" || path == "" {
			return nil, fmt.Errorf("%w: bad projection entry %q", ErrSyntax, pair)
		}
		out = append(out, Projection{Key: key, Path: path})
	}
	return out, nil
}
