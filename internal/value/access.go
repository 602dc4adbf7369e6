package value

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrNotIndexable is returned when an index is applied to a value that has
// no positional elements.
var ErrNotIndexable = errors.New("value is not index-addressable")

// LengthProperty is the pseudo-property that yields the size of sequences,
// strings and mappings that do not define it themselves.
const LengthProperty = "length"

// Field returns the named member of v: a map entry, a struct field (by name
// or json tag), or a method bound to v. A missing member yields (nil, false).
func Field(v any, name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		if got, ok := m[name]; ok {
			return got, true
		}
		if name == LengthProperty {
			return len(m), true
		}
		return nil, false
	}

	orig := reflect.ValueOf(v)
	rv := indirect(orig)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			got := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if got.IsValid() {
				return got.Interface(), true
			}
		}
	case reflect.Struct:
		if f, ok := structField(rv, name); ok {
			return f.Interface(), true
		}
	}
	if name == LengthProperty {
		if n, ok := Len(v); ok {
			return n, true
		}
	}
	if m := orig.MethodByName(name); m.IsValid() {
		return m.Interface(), true
	}
	return nil, false
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return rv.FieldByIndex(sf.Index), true
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if tag == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Index returns element i of v. nil yields nil; an out-of-range index yields
// nil; mappings are indexed by the decimal form of i.
func Index(v any, i int) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.([]any); ok {
		if i < 0 || i >= len(s) {
			return nil, nil
		}
		return s[i], nil
	}
	rv := indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if i < 0 || i >= rv.Len() {
			return nil, nil
		}
		return rv.Index(i).Interface(), nil
	case reflect.String:
		r := []rune(rv.String())
		if i < 0 || i >= len(r) {
			return nil, nil
		}
		return string(r[i]), nil
	case reflect.Map:
		got, _ := Field(v, strconv.Itoa(i))
		return got, nil
	}
	return nil, fmt.Errorf("%w: %T[%d]", ErrNotIndexable, v, i)
}

// Len returns the size of sequences, strings and mappings.
func Len(v any) (int, bool) {
	rv := indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	case reflect.String:
		return len([]rune(rv.String())), true
	}
	return 0, false
}

// Elements returns the elements of a sequence, or nil for anything else.
func Elements(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	rv := indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
