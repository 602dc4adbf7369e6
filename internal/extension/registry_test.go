package extension

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atom122158003/pandyle/internal/value"
)

func TestRegisterRoutesBySuffix(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("shout", strings.ToUpper))
	require.NoError(t, r.Register("trimFilter", strings.TrimSpace))
	require.NoError(t, r.Register("dateConverter", func(v any) string { return "date" }))
	require.NoError(t, r.Register("siteName", "pandyle"))

	_, ok := r.Method("shout")
	assert.True(t, ok)
	_, ok = r.Filter("trimFilter")
	assert.True(t, ok)
	_, ok = r.Method("trimFilter")
	assert.False(t, ok)
	_, ok = r.Converter("date")
	assert.True(t, ok)
	_, ok = r.Converter("dateConverter")
	assert.True(t, ok)
	v, ok := r.Variable("siteName")
	assert.True(t, ok)
	assert.Equal(t, "pandyle", v)

	methods, filters, converters := r.Names()
	assert.Equal(t, []string{"shout"}, methods)
	assert.Equal(t, []string{"trimFilter"}, filters)
	assert.Equal(t, []string{"date"}, converters)
}

func TestExplicitVerbsRejectNonCallables(t *testing.T) {
	r := NewRegistry()
	err := r.AddMethod("x", 42)
	assert.True(t, errors.Is(err, value.ErrNotCallable))
	assert.Error(t, r.AddConverter("", strings.ToUpper))
}

func TestConvert(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddConverter("countConverter", func(v any) int {
		n, _ := value.Len(v)
		return n
	}))

	got, err := r.Convert("count", []any{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = r.Convert("missing", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBuiltins(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r))

	call := func(name string, args ...any) any {
		fn, ok := r.Method(name)
		require.True(t, ok, name)
		out, err := value.Call(fn, args...)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, "ABC", call("upper", "abc"))
	assert.Equal(t, "abc", call("lower", "ABC"))
	assert.Equal(t, "Hello World", call("title", "hello world"))
	assert.Equal(t, "x", call("trim", "  x "))
	assert.Equal(t, 3, call("len", []any{1, 2, 3}))
	assert.Equal(t, "a-b", call("join", []any{"a", "b"}, "-"))
	assert.Equal(t, "a1true", call("concat", "a", 1, true))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.AddMethod("f", strings.ToUpper)
			_, _ = r.Method("f")
		}()
	}
	wg.Wait()
	_, ok := r.Method("f")
	assert.True(t, ok)
}
