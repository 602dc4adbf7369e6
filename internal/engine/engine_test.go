package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/atom122158003/pandyle/internal/dom"
	"github.com/atom122158003/pandyle/internal/extension"
	"github.com/atom122158003/pandyle/internal/testutil"
)

// setupEngine parses markup, binds data and runs the first pass.
func setupEngine(t *testing.T, markup string, data any, opts ...Option) *Engine {
	t.Helper()
	root := testutil.MustParse(t, markup)
	base := []Option{
		WithPassTokenGenerator(testutil.NewFixedPassGenerator("")),
		WithGlobalExtensions(extension.NewRegistry()),
	}
	e := New(root, data, append(base, opts...)...)
	require.NoError(t, e.Run(context.Background()))
	return e
}

func htmlOf(t *testing.T, e *Engine) string {
	t.Helper()
	return testutil.MustHTML(t, e.Root())
}

func byID(t *testing.T, e *Engine, id string) *html.Node {
	t.Helper()
	n := testutil.Find(e.Root(), id)
	require.NotNil(t, n, "no element with id %q", id)
	return n
}

func TestEngine_TextTokens(t *testing.T) {
	e := setupEngine(t, `<p id="t">{{a}} {{b}}</p>`, map[string]any{"a": 1, "b": 2})
	assert.Equal(t, `<p id="t">1 2</p>`, htmlOf(t, e))

	require.NoError(t, e.Set(context.Background(), map[string]any{"b": 3}))
	assert.Equal(t, `<p id="t">1 3</p>`, htmlOf(t, e))
}

func TestEngine_SetRendersOnlyDependents(t *testing.T) {
	data := map[string]any{"a": 1, "b": 2}
	e := setupEngine(t, `<p id="a">{{a}}</p><p id="b">{{b}}</p>`, data)

	// Mutating the store behind the engine's back shows which nodes re-render.
	data["a"] = 100
	before := e.Renders()
	require.NoError(t, e.Set(context.Background(), map[string]any{"b": 3}))

	assert.Equal(t, int64(1), e.Renders()-before)
	assert.Equal(t, `<p id="a">1</p><p id="b">3</p>`, htmlOf(t, e))
}

func TestEngine_SetWithoutDependentsRendersNothing(t *testing.T) {
	e := setupEngine(t, `<p>{{a}}</p>`, map[string]any{"a": 1})
	before := e.Renders()
	require.NoError(t, e.Set(context.Background(), map[string]any{"unrelated": true}))
	assert.Equal(t, before, e.Renders())
	v, err := e.Get("unrelated")
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestEngine_SetDispatchesToFirstMatchingRelation(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "ann", "age": 30}}
	e := setupEngine(t,
		`<p id="n">{{user.name}}</p><div id="u" p-context="user"><span id="age">{{age}}</span></div>`,
		data)
	assert.Equal(t, []string{"user.name", "user", "user.age"}, e.Relations().Paths())

	before := e.Renders()
	require.NoError(t, e.Set(context.Background(), map[string]any{"user.age": 31}))
	assert.Equal(t, int64(1), e.Renders()-before)
	assert.Equal(t, "31", dom.Text(byID(t, e, "age")))

	before = e.Renders()
	require.NoError(t, e.Set(context.Background(), map[string]any{
		"user": map[string]any{"name": "bo", "age": 40},
	}))
	assert.Equal(t, int64(1), e.Renders()-before, "only the first relation at or below user re-renders")
	assert.Equal(t, "bo", dom.Text(byID(t, e, "n")))
	assert.Equal(t, "31", dom.Text(byID(t, e, "age")))
}

func TestEngine_Each(t *testing.T) {
	data := map[string]any{"items": []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
		map[string]any{"name": "c"},
	}}
	e := setupEngine(t, `<ul p-each="items"><li>{{name}}</li></ul>`, data)

	assert.Equal(t, `<ul p-each="items"><li>a</li><li>b</li><li>c</li></ul>`, htmlOf(t, e))
	assert.Equal(t,
		[]string{"items", "items[0].name", "items[1].name", "items[2].name"},
		e.Relations().Paths())

	require.NoError(t, e.Set(context.Background(), map[string]any{"items.1.name": "B"}))
	assert.Equal(t, `<ul p-each="items"><li>a</li><li>B</li><li>c</li></ul>`, htmlOf(t, e))
}

func TestEngine_ReplacingSequencePrunesDescendants(t *testing.T) {
	data := map[string]any{"items": []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
		map[string]any{"name": "c"},
	}}
	e := setupEngine(t, `<ul p-each="items"><li>{{name}}</li></ul>`, data)

	before := e.Renders()
	require.NoError(t, e.Set(context.Background(), map[string]any{
		"items": []any{map[string]any{"name": "x"}},
	}))

	assert.Equal(t, int64(2), e.Renders()-before, "the list and its single new item")
	assert.Equal(t, []string{"items", "items[0].name"}, e.Relations().Paths())
	assert.Equal(t, `<ul p-each="items"><li>x</li></ul>`, htmlOf(t, e))

	rel, ok := e.Relations().Lookup("items[0].name")
	require.True(t, ok)
	assert.Len(t, rel.Elements, 1, "removed clones are forgotten")
}

func TestEngine_EachOverMissingSequence(t *testing.T) {
	e := setupEngine(t, `<ul p-each="nothing"><li>x</li></ul>`, map[string]any{})
	assert.Equal(t, `<ul p-each="nothing"></ul>`, htmlOf(t, e))

	require.NoError(t, e.Set(context.Background(), map[string]any{"nothing": []any{1, 2}}))
	assert.Equal(t, `<ul p-each="nothing"><li>x</li><li>x</li></ul>`, htmlOf(t, e))
}

func TestEngine_IfHidesAndShows(t *testing.T) {
	e := setupEngine(t,
		`<div id="box" p-if="{{x}}"><span id="s">{{label}}</span></div>`,
		map[string]any{"x": false, "label": "hi"})

	assert.Equal(t, `<div id="box" hidden=""><span id="s">hi</span></div>`, htmlOf(t, e))
	span := byID(t, e, "s")

	require.NoError(t, e.Set(context.Background(), map[string]any{"x": true}))
	assert.Equal(t, `<div id="box"><span id="s">hi</span></div>`, htmlOf(t, e))
	assert.Same(t, span, byID(t, e, "s"), "showing does not rebuild the subtree")
}

func TestEngine_IfExpression(t *testing.T) {
	e := setupEngine(t,
		`<b id="big" p-if="{{n}} > 3">big</b><b id="named" p-if="'{{name}}' == 'ann'">ann</b><b id="gone" p-if="{{missing}}">?</b>`,
		map[string]any{"n": 5, "name": "ann"})

	assert.False(t, dom.IsHidden(byID(t, e, "big")))
	assert.False(t, dom.IsHidden(byID(t, e, "named")))
	assert.True(t, dom.IsHidden(byID(t, e, "gone")))

	require.NoError(t, e.Set(context.Background(), map[string]any{"n": 1}))
	assert.True(t, dom.IsHidden(byID(t, e, "big")))
}

func TestEngine_SelfInsideNestedEach(t *testing.T) {
	data := map[string]any{
		"n": "root-n",
		"groups": []any{
			map[string]any{
				"title": "g0",
				"n":     "group-n",
				"items": []any{map[string]any{"n": "i0"}, map[string]any{"n": "i1"}},
			},
		},
	}
	e := setupEngine(t,
		`<div p-each="groups"><section><h2>{{@self.title}}</h2><ol p-each="items"><li>{{@self.n}}</li></ol></section></div>`,
		data)

	assert.Equal(t,
		`<div p-each="groups"><section><h2>g0</h2><ol p-each="items"><li>i0</li><li>i1</li></ol></section></div>`,
		htmlOf(t, e))
	_, ok := e.Relations().Lookup("groups[0].items[1].n")
	assert.True(t, ok)

	require.NoError(t, e.Set(context.Background(), map[string]any{"groups[0].items[1].n": "I1"}))
	assert.Contains(t, htmlOf(t, e), `<li>i0</li><li>I1</li>`)
}

func TestEngine_RenderIsIdempotent(t *testing.T) {
	data := map[string]any{
		"title": "t",
		"show":  true,
		"url":   "/x",
		"user":  map[string]any{"name": "ann"},
		"items": []any{"a", "b"},
	}
	e := setupEngine(t,
		`<h1 p-bind="title:{{title}}">{{title}}</h1><div p-if="{{show}}"><a p-bind="href:{{url}}">go</a></div><div p-context="user"><i>{{name}}</i></div><ul p-each="items"><li>{{@self}}</li></ul>`,
		data)

	first := htmlOf(t, e)
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, first, htmlOf(t, e))
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, first, htmlOf(t, e))
}

func TestEngine_Bind(t *testing.T) {
	e := setupEngine(t,
		`<a id="l" p-bind="href:/u/{{id}}^title:{{name}}">profile</a>`,
		map[string]any{"id": 7, "name": "ann"})
	assert.Equal(t, `<a id="l" href="/u/7" title="ann">profile</a>`, htmlOf(t, e))

	require.NoError(t, e.Set(context.Background(), map[string]any{"id": 8}))
	assert.Equal(t, `<a id="l" href="/u/8" title="ann">profile</a>`, htmlOf(t, e))
}

func TestEngine_BindKeepsColonsInPattern(t *testing.T) {
	e := setupEngine(t,
		`<a p-bind="href:https://example.com/{{slug}}">x</a>`,
		map[string]any{"slug": "post"})
	assert.Equal(t, `<a href="https://example.com/post">x</a>`, htmlOf(t, e))
}

func TestEngine_BindText(t *testing.T) {
	e := setupEngine(t, `<span p-bind="text:Hello {{who}}">placeholder</span>`, map[string]any{"who": "you"})
	assert.Equal(t, `<span>Hello you</span>`, htmlOf(t, e))
}

func TestEngine_ContextProjection(t *testing.T) {
	data := map[string]any{"user": map[string]any{
		"name": map[string]any{"first": "Ann"},
		"age":  30,
	}}
	e := setupEngine(t,
		`<div p-context="user|{first:name.first,years:age}"><span>{{first}} ({{years}})</span></div>`,
		data)
	assert.Contains(t, htmlOf(t, e), `<span>Ann (30)</span>`)
	assert.Equal(t, []string{"user", "user.first", "user.years"}, e.Relations().Paths())
}

func TestEngine_ContextConverter(t *testing.T) {
	root := testutil.MustParse(t, `<div p-context="items|count"><b>{{total}}</b></div>`)
	e := New(root, map[string]any{"items": []any{1, 2, 3}},
		WithPassTokenGenerator(testutil.NewFixedPassGenerator("")),
		WithGlobalExtensions(extension.NewRegistry()),
	)
	require.NoError(t, e.RegisterConverter("countConverter", func(v any) map[string]any {
		n, _ := v.([]any)
		return map[string]any{"total": len(n)}
	}))
	require.NoError(t, e.Run(context.Background()))
	assert.Contains(t, htmlOf(t, e), `<b>3</b>`)
}

func TestEngine_ContextUnknownConverter(t *testing.T) {
	root := testutil.MustParse(t, `<div p-context="items|nope"><b>x</b></div>`)
	e := New(root, map[string]any{"items": []any{}},
		WithPassTokenGenerator(testutil.NewFixedPassGenerator("")),
		WithGlobalExtensions(extension.NewRegistry()),
	)
	err := e.Run(context.Background())
	assert.True(t, errors.Is(err, extension.ErrNotFound))

	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, DirectiveContext, re.Directive)
}

func TestEngine_AliasAs(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "ann", "tags": []any{"x", "y"}}}
	e := setupEngine(t,
		`<div p-context="user" p-as="u"><ul p-each="tags"><li>{{@u.name}}: {{@self}}</li></ul></div>`,
		data)
	assert.Contains(t, htmlOf(t, e), `<li>ann: x</li><li>ann: y</li>`)

	_, ok := e.Relations().Lookup("user.name")
	assert.True(t, ok)
	_, ok = e.Relations().Lookup("user.tags[1]")
	assert.True(t, ok)
}

func TestEngine_MissingDataRendersEmpty(t *testing.T) {
	e := setupEngine(t, `<p>[{{nothing.here}}]</p>`, map[string]any{})
	assert.Equal(t, `<p>[]</p>`, htmlOf(t, e))

	v, err := e.Get("nothing.here")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEngine_Methods(t *testing.T) {
	global := extension.NewRegistry()
	require.NoError(t, global.AddMethod("whisper", strings.ToLower))

	root := testutil.MustParse(t,
		`<p id="a">{{shout(name)}}</p><p id="b">{{whisper(name)}}</p><p id="c">{{hello(name)}}</p><p id="d">{{@window.site}}</p>`)
	e := New(root, map[string]any{"name": "Ann"},
		WithPassTokenGenerator(testutil.NewFixedPassGenerator("")),
		WithGlobalExtensions(global),
		WithGlobal(map[string]any{
			"site":  "pandyle",
			"hello": func(s string) string { return "hello " + s },
		}),
	)
	require.NoError(t, e.Register("shout", strings.ToUpper))
	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, "ANN", dom.Text(byID(t, e, "a")))
	assert.Equal(t, "ann", dom.Text(byID(t, e, "b")))
	assert.Equal(t, "hello Ann", dom.Text(byID(t, e, "c")))
	assert.Equal(t, "pandyle", dom.Text(byID(t, e, "d")))
}

func TestEngine_Get(t *testing.T) {
	data := map[string]any{"a": 1, "user": map[string]any{"name": "ann"}, "list": []any{1, 2}}
	e := setupEngine(t, `<p></p>`, data)

	got, err := e.Get("user.name")
	require.NoError(t, err)
	assert.Equal(t, "ann", got)

	got, err = e.Get([]string{"a", "user.name"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "ann"}, got)

	got, err = e.Get([]any{"a", []any{"list[1]"}})
	require.NoError(t, err)
	assert.Equal(t, []any{1, []any{2}}, got)

	got, err = e.Get(map[string]string{"who": "user.name", "first": "list[0]"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"who": "ann", "first": 1}, got)

	got, err = e.Get(map[string]any{"who": "@root.user.name"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"who": "ann"}, got)

	got, err = e.Get(42)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = e.Get(map[string]any{"bad": 1})
	assert.Error(t, err)

	list, err := e.Get("list")
	require.NoError(t, err)
	list.([]any)[0] = 99
	assert.Equal(t, 1, data["list"].([]any)[0], "Get returns copies of containers")
}

func TestEngine_ComponentLoadedOnce(t *testing.T) {
	calls := 0
	loader := ComponentLoaderFunc(func(ctx context.Context, n *html.Node) error {
		calls++
		return dom.ReplaceChildren(n, strings.NewReader(`<b>{{who}}</b>`))
	})
	e := setupEngine(t, `<c name="greeting"></c>`, map[string]any{"who": "world"}, WithLoader(loader))
	assert.Equal(t, `<c name="greeting"><b>world</b></c>`, htmlOf(t, e))

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 1, calls)

	require.NoError(t, e.Set(context.Background(), map[string]any{"who": "you"}))
	assert.Equal(t, `<c name="greeting"><b>you</b></c>`, htmlOf(t, e))
}

func TestEngine_ComponentTagOption(t *testing.T) {
	loaded := false
	loader := ComponentLoaderFunc(func(ctx context.Context, n *html.Node) error {
		loaded = true
		return nil
	})
	setupEngine(t, `<c></c>`, nil, WithLoader(loader), WithComponentTag("x-comp"))
	assert.False(t, loaded)
}

func TestEngine_ComponentError(t *testing.T) {
	boom := errors.New("boom")
	root := testutil.MustParse(t, `<c></c>`)
	e := New(root, nil,
		WithPassTokenGenerator(testutil.NewFixedPassGenerator("")),
		WithLoader(ComponentLoaderFunc(func(context.Context, *html.Node) error { return boom })),
	)
	err := e.Run(context.Background())
	assert.True(t, errors.Is(err, boom))

	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "c", re.Tag)
	assert.Equal(t, DirectiveComponent, re.Directive)
}

func TestEngine_ErrorsPropagate(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		check  func(error) bool
	}{
		{"unknown function", `<p>{{nothing(1)}}</p>`, IsNotCallableError},
		{"bad condition", `<p p-if="{{name}} == 1">x</p>`, IsSyntaxError},
		{"malformed path", `<p>{{a..b}}</p>`, IsPathError},
		{"unknown alias", `<p>{{@ghost.x}}</p>`, IsUnknownAliasError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.MustParse(t, tc.markup)
			e := New(root, map[string]any{"name": "bob"},
				WithPassTokenGenerator(testutil.NewFixedPassGenerator("")),
				WithGlobalExtensions(extension.NewRegistry()),
			)
			err := e.Run(context.Background())
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error: %v", err)

			var re *RenderError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, "p", re.Tag)
		})
	}
}

func TestEngine_SetErrors(t *testing.T) {
	e := setupEngine(t, `<p>{{n}}</p>`, map[string]any{"n": 5})

	err := e.Set(context.Background(), map[string]any{"a..b": 1})
	assert.True(t, IsPathError(err))

	err = e.Set(context.Background(), map[string]any{"n.x": 1})
	assert.True(t, IsWriteError(err))
}

func TestEngine_FailedTokenDoesNotBlockRegistration(t *testing.T) {
	root := testutil.MustParse(t, `<p id="p">{{a}} {{late(a)}}</p>`)
	e := New(root, map[string]any{"a": 1},
		WithPassTokenGenerator(testutil.NewFixedPassGenerator("")),
		WithGlobalExtensions(extension.NewRegistry()),
	)
	require.Error(t, e.Run(context.Background()))
	_, ok := e.Relations().Lookup("a")
	assert.True(t, ok, "tokens before the failure are registered")

	require.NoError(t, e.RegisterMethod("late", func(v float64) float64 { return v * 10 }))
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, "1 10", dom.Text(byID(t, e, "p")))

	require.NoError(t, e.Set(context.Background(), map[string]any{"a": 2}))
	assert.Equal(t, "2 20", dom.Text(byID(t, e, "p")))
}

func TestEngine_ContextCancelled(t *testing.T) {
	root := testutil.MustParse(t, `<p>{{a}}</p>`)
	e := New(root, map[string]any{"a": 1}, WithPassTokenGenerator(testutil.NewFixedPassGenerator("")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Run(ctx), context.Canceled)
}

func TestEngine_RenderSubset(t *testing.T) {
	e := setupEngine(t, `<p id="p">{{a}}</p>`, map[string]any{"a": 1})
	frag := testutil.MustParse(t, `<i>{{x}}</i>`)
	require.NoError(t, e.Render(context.Background(), dom.Children(frag), map[string]any{"x": "y"}, "extra", nil))
	assert.Equal(t, `<i>y</i>`, testutil.MustHTML(t, frag))
	_, ok := e.Relations().Lookup("extra.x")
	assert.True(t, ok)
}

func TestBindRunsFirstPass(t *testing.T) {
	root := testutil.MustParse(t, `<p>{{a}}</p>`)
	e, err := Bind(context.Background(), root, map[string]any{"a": "z"},
		WithPassTokenGenerator(NewFixedGenerator("pass-1")))
	require.NoError(t, err)
	out, err := e.HTML()
	require.NoError(t, err)
	assert.Equal(t, `<p>z</p>`, out)
}

func TestEngine_WithClock(t *testing.T) {
	clock := testutil.NewDeterministicClock()
	e := setupEngine(t, `<div><p>{{a}}</p><p>{{b}}</p></div>`, map[string]any{"a": 1, "b": 2}, WithClock(clock))
	assert.Equal(t, int64(4), clock.Current(), "container, div and two paragraphs")

	clock.Reset()
	require.NoError(t, e.Set(context.Background(), map[string]any{"a": 5}))
	assert.Equal(t, int64(1), clock.Current())
}
