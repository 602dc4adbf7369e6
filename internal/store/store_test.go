package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestSteps(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a", "a"},
		{"a.b.c", "a.b.c"},
		{"items[0]", "items[0]"},
		{"items.0", "items[0]"},
		{"items.0.name", "items[0].name"},
		{"grid[1][2].v", "grid[1][2].v"},
		{"[3]", "[3]"},
		{"a.b2", "a.b2"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := Canonical(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStepsRejectsMalformed(t *testing.T) {
	for _, path := range []string{"", "a..b", "a[", "a[x]", "a[-1]", "a[1]b", "."} {
		t.Run(path, func(t *testing.T) {
			_, err := Steps(path)
			assert.True(t, errors.Is(err, ErrMalformedPath), "got %v", err)
		})
	}
}

func TestLookup(t *testing.T) {
	s := New(map[string]any{
		"user":  map[string]any{"name": "ann", "tags": []any{"x", "y"}},
		"empty": nil,
		"p":     &profile{Name: "bo"},
	})

	got, err := s.Lookup("user.name")
	require.NoError(t, err)
	assert.Equal(t, "ann", got)

	got, err = s.Lookup("user.tags[1]")
	require.NoError(t, err)
	assert.Equal(t, "y", got)

	got, err = s.Lookup("p.name")
	require.NoError(t, err)
	assert.Equal(t, "bo", got)

	got, err = s.Lookup("empty")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.Lookup("user.missing")
	assert.True(t, errors.Is(err, ErrPathNotFound))

	_, err = s.Lookup("user.tags[5]")
	assert.True(t, errors.Is(err, ErrPathNotFound))

	_, err = s.Lookup("empty.deeper")
	assert.True(t, errors.Is(err, ErrPathNotFound))
}

func TestNewNilRoot(t *testing.T) {
	s := New(nil)
	assert.Equal(t, map[string]any{}, s.Root())
}

func TestWriteInPlace(t *testing.T) {
	inner := map[string]any{"b": 1}
	root := map[string]any{"a": inner}
	s := New(root)

	require.NoError(t, s.Write("a.b", 2))
	assert.Equal(t, 2, inner["b"], "existing containers are mutated, not replaced")

	require.NoError(t, s.Write("a.c", nil))
	v, ok := inner["c"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestWriteCreatesIntermediates(t *testing.T) {
	s := New(map[string]any{})

	require.NoError(t, s.Write("a.b.c", "x"))
	require.NoError(t, s.Write("list[1].name", "second"))

	assert.Equal(t, map[string]any{
		"a":    map[string]any{"b": map[string]any{"c": "x"}},
		"list": []any{nil, map[string]any{"name": "second"}},
	}, s.Root())
}

func TestWriteGrowsSequence(t *testing.T) {
	s := New(map[string]any{"items": []any{"a"}})

	require.NoError(t, s.Write("items.2", "c"))
	got, err := s.Lookup("items")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", nil, "c"}, got)
}

func TestWriteStructs(t *testing.T) {
	p := &profile{Name: "ann"}
	s := New(map[string]any{"byPtr": p, "byVal": profile{Name: "bo"}})

	require.NoError(t, s.Write("byPtr.score", 7.0))
	assert.Equal(t, 7, p.Score)

	require.NoError(t, s.Write("byVal.Name", "cy"))
	got, err := s.Lookup("byVal.name")
	require.NoError(t, err)
	assert.Equal(t, "cy", got)

	err = s.Write("byPtr.nope", 1)
	assert.True(t, errors.Is(err, ErrPathNotFound))

	err = s.Write("byPtr.name", []any{1})
	assert.True(t, errors.Is(err, ErrNotAssignable))
}

func TestWriteTypedContainers(t *testing.T) {
	counts := map[string]int{"a": 1}
	s := New(map[string]any{"counts": counts, "n": 5})

	require.NoError(t, s.Write("counts.a", 3.0))
	assert.Equal(t, 3, counts["a"])

	err := s.Write("n.deeper", 1)
	assert.True(t, errors.Is(err, ErrNotAssignable))

	err = s.Write("counts[0]", 1)
	require.NoError(t, err, "string-keyed maps accept decimal index keys")
	assert.Equal(t, 1, counts["0"])
}

func TestWriteRootSequence(t *testing.T) {
	s := New([]any{1})
	require.NoError(t, s.Write("[2]", 3))
	assert.Equal(t, []any{1, nil, 3}, s.Root())
}

type tagged struct {
	Tags map[string]string
}

func TestWriteNilMaps(t *testing.T) {
	s := New(map[string]any{"user": map[string]any(nil)})
	require.NoError(t, s.Write("user.name", "ann"))
	assert.Equal(t, map[string]any{"user": map[string]any{"name": "ann"}}, s.Root())

	byPtr := &tagged{}
	s = New(map[string]any{"byPtr": byPtr, "byVal": tagged{}})
	require.NoError(t, s.Write("byPtr.Tags.color", "red"))
	assert.Equal(t, map[string]string{"color": "red"}, byPtr.Tags)

	require.NoError(t, s.Write("byVal.Tags.size", "xl"))
	got, err := s.Lookup("byVal.Tags.size")
	require.NoError(t, err)
	assert.Equal(t, "xl", got)
}

func TestWriteIndexGap(t *testing.T) {
	s := New(map[string]any{"items": []any{"a"}})

	err := s.Write("items[100000000]", "x")
	assert.True(t, errors.Is(err, ErrNotAssignable))
	err = s.Write("fresh[100000000]", "x")
	assert.True(t, errors.Is(err, ErrNotAssignable))

	got, err := s.Lookup("items")
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, got)

	require.NoError(t, s.Write(fmt.Sprintf("items[%d]", 1+MaxIndexGap), "z"))
	got, err = s.Lookup("items")
	require.NoError(t, err)
	require.Len(t, got, 2+MaxIndexGap)
	assert.Equal(t, "a", got.([]any)[0])
	assert.Equal(t, "z", got.([]any)[1+MaxIndexGap])
}
