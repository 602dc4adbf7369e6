// Package dom provides the small set of node primitives the binding engine
// needs on top of golang.org/x/net/html: attribute access, visibility,
// deep cloning, text content and fragment parsing/rendering.
//
// Only element nodes carry directives. "Children" always means element
// children, matching how templates are authored.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HiddenAttr is the attribute toggled by Hide and Show.
const HiddenAttr = "hidden"

// Attr returns the value of attribute key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key, keeping its position if it already exists.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key if present.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Hide marks n as hidden without detaching it.
func Hide(n *html.Node) {
	SetAttr(n, HiddenAttr, "")
}

// Show reverses Hide.
func Show(n *html.Node) {
	RemoveAttr(n, HiddenAttr)
}

// IsHidden reports whether n carries the hidden attribute.
func IsHidden(n *html.Node) bool {
	_, ok := Attr(n, HiddenAttr)
	return ok
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Children returns the element children of n in document order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// HasChildren reports whether n has at least one element child.
func HasChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// RemoveChildren detaches every child node of n and returns the detached
// nodes.
func RemoveChildren(n *html.Node) []*html.Node {
	var removed []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		removed = append(removed, c)
		c = next
	}
	return removed
}

// Clone returns a deep, detached copy of n.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Text returns the concatenated text content of n and its descendants.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// SetText replaces the content of n with a single text node. An empty
// string leaves n without children, which keeps void elements valid.
func SetText(n *html.Node, text string) {
	RemoveChildren(n)
	if text == "" {
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Walk visits n and all of its descendants in document order.
func Walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// NewContainer returns a detached element used to hold parsed fragments.
func NewContainer() *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
}

// ParseFragment parses markup in a body context and returns a container
// element holding the parsed nodes.
func ParseFragment(r io.Reader) (*html.Node, error) {
	container := NewContainer()
	nodes, err := html.ParseFragment(r, container)
	if err != nil {
		return nil, fmt.Errorf("error parsing fragment: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// ParseFragmentString is ParseFragment over a string.
func ParseFragmentString(s string) (*html.Node, error) {
	return ParseFragment(strings.NewReader(s))
}

// ReplaceChildren parses markup in the context of n and makes the result
// the new content of n.
func ReplaceChildren(n *html.Node, r io.Reader) error {
	ctxNode := n
	if n.Type != html.ElementNode {
		ctxNode = NewContainer()
	}
	nodes, err := html.ParseFragment(r, ctxNode)
	if err != nil {
		return fmt.Errorf("error parsing fragment: %w", err)
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// RenderChildren writes the markup of every child of n to w.
func RenderChildren(w io.Writer, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("error rendering <%s>: %w", c.Data, err)
		}
	}
	return nil
}

// InnerHTML returns the rendered markup of the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := RenderChildren(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
