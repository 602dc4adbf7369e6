package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/atom122158003/pandyle/internal/dom"
)

// MustParse parses markup into a container element, failing the test on
// error.
func MustParse(t testing.TB, markup string) *html.Node {
	t.Helper()
	root, err := dom.ParseFragmentString(markup)
	require.NoError(t, err)
	return root
}

// MustHTML renders the children of n, failing the test on error.
func MustHTML(t testing.TB, n *html.Node) string {
	t.Helper()
	out, err := dom.InnerHTML(n)
	require.NoError(t, err)
	return out
}

// Find returns the first element under root (root included) with the given
// id attribute, or nil.
func Find(root *html.Node, id string) *html.Node {
	var found *html.Node
	dom.Walk(root, func(n *html.Node) {
		if found != nil || !dom.IsElement(n) {
			return
		}
		if v, ok := dom.Attr(n, "id"); ok && v == id {
			found = n
		}
	})
	return found
}
