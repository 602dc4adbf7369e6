package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	root := map[string]any{"a": 1}
	global := map[string]any{"title": "doc"}
	m := Defaults(root, global)

	r, ok := m.Lookup(Root)
	require.True(t, ok)
	assert.Equal(t, root, r.Data)
	assert.Equal(t, "", r.Path)

	w, ok := m.Lookup(Window)
	require.True(t, ok)
	assert.Equal(t, global, w.Data)
	assert.Equal(t, WindowPath, w.Path)

	_, ok = m.Lookup(Self)
	assert.False(t, ok)
}

func TestCloneIsolatesChildren(t *testing.T) {
	parent := Defaults(nil, nil)
	parent.Bind(Self, "p", "list")

	child := parent.Clone()
	child.Bind(Self, "c", "list[0]")
	child.Bind("item", "c", "list[0]")

	self, _ := parent.Lookup(Self)
	assert.Equal(t, "list", self.Path)
	_, ok := parent.Lookup("item")
	assert.False(t, ok)

	sibling := parent.Clone()
	_, ok = sibling.Lookup("item")
	assert.False(t, ok)
}

func TestCloneNil(t *testing.T) {
	var m Map
	c := m.Clone()
	require.NotNil(t, c)
	c.Bind("x", 1, "x")
	assert.Len(t, c, 1)
}
