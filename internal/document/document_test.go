package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/atom122158003/pandyle/internal/value"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// checkUser asserts the shape shared by every format's fixture.
func checkUser(t *testing.T, v any) {
	t.Helper()
	root, ok := v.(map[string]any)
	require.True(t, ok, "root is %T", v)

	user, ok := root["user"].(map[string]any)
	require.True(t, ok, "user is %T", root["user"])
	assert.Equal(t, "ann", user["name"])

	age, ok := value.Number(user["age"])
	require.True(t, ok)
	assert.Equal(t, float64(30), age)

	tags, ok := root["tags"].([]any)
	require.True(t, ok, "tags is %T", root["tags"])
	assert.Equal(t, []any{"a", "b"}, tags)
	assert.Equal(t, true, root["active"])
}

func TestLoad_Formats(t *testing.T) {
	packed, err := msgpack.Marshal(map[string]any{
		"user":   map[string]any{"name": "ann", "age": 30},
		"tags":   []any{"a", "b"},
		"active": true,
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"json", "data.json", []byte(`{"user":{"name":"ann","age":30},"tags":["a","b"],"active":true}`)},
		{"yaml", "data.yaml", []byte("user:\n  name: ann\n  age: 30\ntags: [a, b]\nactive: true\n")},
		{"yml", "data.yml", []byte("user: {name: ann, age: 30}\ntags:\n  - a\n  - b\nactive: true\n")},
		{"cue", "data.cue", []byte("user: {\n\tname: \"ann\"\n\tage:  10 * 3\n}\ntags: [\"a\", \"b\"]\nactive: true\n")},
		{"msgpack", "data.msgpack", packed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Load(writeFile(t, tc.file, tc.data))
			require.NoError(t, err)
			checkUser(t, v)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "data.toml", []byte("a = 1")))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.json", []byte(`{"a":`)))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "open.cue", []byte("name: string\n")))
	assert.Error(t, err, "non-concrete CUE is rejected")
}

func TestDecode_Empty(t *testing.T) {
	v, err := Decode([]byte("  \n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, v)
}

func TestDecode_YAMLNonStringKeys(t *testing.T) {
	v, err := Decode([]byte("codes:\n  1: one\n  2: two\n"), FormatYAML)
	require.NoError(t, err)
	codes := v.(map[string]any)["codes"]
	assert.Equal(t, map[string]any{"1": "one", "2": "two"}, codes)
}

func TestDiff(t *testing.T) {
	old := map[string]any{
		"title": "a",
		"same":  1,
		"gone":  true,
		"user":  map[string]any{"name": "ann", "age": 30},
		"items": []any{map[string]any{"n": 1}, map[string]any{"n": 2}},
		"tags":  []any{"x"},
	}
	updated := map[string]any{
		"title": "b",
		"same":  1,
		"user":  map[string]any{"name": "ann", "age": 31},
		"items": []any{map[string]any{"n": 1}, map[string]any{"n": 3}},
		"tags":  []any{"x", "y"},
		"added": "new",
	}

	changes, err := Diff(old, updated)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title":      "b",
		"gone":       nil,
		"user.age":   31,
		"items[1].n": 3,
		"tags":       []any{"x", "y"},
		"added":      "new",
	}, changes)
}

func TestDiff_Unchanged(t *testing.T) {
	tree := map[string]any{"a": []any{1, 2}, "b": map[string]any{"c": "d"}}
	changes, err := Diff(tree, tree)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestDiff_TypeChange(t *testing.T) {
	changes, err := Diff(
		map[string]any{"a": map[string]any{"b": 1}},
		map[string]any{"a": []any{1}},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{1}}, changes)
}

func TestDiff_RequiresObjects(t *testing.T) {
	_, err := Diff([]any{}, map[string]any{})
	assert.ErrorIs(t, err, ErrNotObject)
	_, err = Diff(map[string]any{}, "x")
	assert.ErrorIs(t, err, ErrNotObject)
}
