package value

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the coarse classification used for neutral defaults.
type Kind string

const (
	KindNull   Kind = "null"
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "boolean"
	KindArray  Kind = "array"
	KindObject Kind = "object"
	KindFunc   Kind = "function"
)

// KindOf infers the kind of v.
func KindOf(v any) Kind {
	if v == nil {
		return KindNull
	}
	switch v.(type) {
	case string:
		return KindString
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Map, reflect.Struct:
		return KindObject
	case reflect.Func:
		return KindFunc
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
		return KindOf(rv.Elem().Interface())
	}
	return KindNull
}

// Default returns the neutral value of kind k.
func Default(k Kind) any {
	switch k {
	case KindString:
		return ""
	case KindNumber:
		return float64(0)
	case KindBool:
		return false
	case KindArray:
		return []any{}
	case KindObject:
		return map[string]any{}
	case KindFunc:
		return func(...any) any { return nil }
	default:
		return nil
	}
}

// Coerce maps a resolution result onto a fresh value of its kind. Scalars
// pass through verbatim; []any and map[string]any are shallow-copied so
// callers never alias the data tree through a resolved value.
func Coerce(v any) any {
	switch k := KindOf(v); k {
	case KindString, KindNumber, KindBool:
		return v
	case KindNull:
		return Default(k)
	}
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		copy(out, t)
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, elem := range t {
			out[key] = elem
		}
		return out
	}
	return v
}

// IsSequence reports whether v is a slice or array.
func IsSequence(v any) bool {
	return KindOf(v) == KindArray
}

// Number converts numeric v to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Truthy follows the usual template truthiness: nil, false, 0, NaN and the
// empty string are false; everything else is true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, ok := Number(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return false
	}
	return true
}

// String renders v as text content. nil renders as the empty string and
// sequences are joined with commas.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}
	if n, ok := Number(v); ok {
		return FormatNumber(n)
	}
	if IsSequence(v) {
		elems := Elements(v)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = String(e)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// FormatNumber renders n without a trailing fraction for integral values.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
