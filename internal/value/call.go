package value

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotCallable is returned by Call when fn is not a function.
var ErrNotCallable = errors.New("value is not callable")

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Callable reports whether v is a function value.
func Callable(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// Call invokes fn with args. Arguments are converted to the parameter types
// where Go allows it; a nil argument becomes the parameter's zero value.
// fn may return nothing, a value, an error, or a value and an error.
func Call(fn any, args ...any) (any, error) {
	if !Callable(fn) {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, fn)
	}
	rv := reflect.ValueOf(fn)
	t := rv.Type()

	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		var pt reflect.Type
		switch {
		case t.IsVariadic() && i >= t.NumIn()-1:
			pt = t.In(t.NumIn() - 1).Elem()
		case i < t.NumIn():
			pt = t.In(i)
		default:
			return nil, fmt.Errorf("too many arguments: want %d, got %d", t.NumIn(), len(args))
		}
		av, err := convertArg(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, av)
	}
	for len(in) < t.NumIn() && !(t.IsVariadic() && len(in) == t.NumIn()-1) {
		in = append(in, reflect.Zero(t.In(len(in))))
	}

	out := rv.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if t.Out(0) == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		err, _ := out[len(out)-1].Interface().(error)
		return out[0].Interface(), err
	}
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(pt), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	if n, ok := Number(arg); ok && isNumericKind(pt.Kind()) {
		return reflect.ValueOf(n).Convert(pt), nil
	}
	if pt.Kind() == reflect.String {
		return reflect.ValueOf(String(arg)).Convert(pt), nil
	}
	if av.Type().ConvertibleTo(pt) {
		return av.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, pt)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
