package store

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	mapType   = reflect.TypeOf(map[string]any(nil))
	sliceType = reflect.TypeOf([]any(nil))
)

// MaxIndexGap is how far past the end of a sequence a write may land.
// The elements in between are filled with zero values.
const MaxIndexGap = 1024

// assign writes v at steps below cur and returns the value that should
// replace cur in its parent. Containers with reference semantics are
// updated in place; values (structs, arrays, grown slices) come back as
// fresh copies.
func assign(cur reflect.Value, steps []Step, v any) (reflect.Value, error) {
	if len(steps) == 0 {
		if v == nil {
			return reflect.Zero(anyType), nil
		}
		return reflect.ValueOf(v), nil
	}
	cur = unwrap(cur)
	step := steps[0]

	if cur.IsValid() && cur.Kind() == reflect.Pointer {
		if cur.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil pointer at %s", ErrNotAssignable, step)
		}
		elem := cur.Elem()
		updated, err := assign(elem, steps, v)
		if err != nil {
			return reflect.Value{}, err
		}
		if err := set(elem, updated); err != nil {
			return reflect.Value{}, err
		}
		return cur, nil
	}

	if !cur.IsValid() {
		if step.IsIndex {
			cur = reflect.MakeSlice(sliceType, 0, 0)
		} else {
			cur = reflect.MakeMap(mapType)
		}
	}

	switch cur.Kind() {
	case reflect.Map:
		if cur.IsNil() {
			cur = reflect.MakeMap(cur.Type())
		}
		key, ok := mapKey(cur.Type(), step)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s is not a valid %s key", ErrNotAssignable, step, cur.Type().Key())
		}
		updated, err := assign(cur.MapIndex(key), steps[1:], v)
		if err != nil {
			return reflect.Value{}, err
		}
		conv, err := convertTo(updated, cur.Type().Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		cur.SetMapIndex(key, conv)
		return cur, nil

	case reflect.Slice:
		if !step.IsIndex {
			return reflect.Value{}, fmt.Errorf("%w: key %q on a sequence", ErrNotAssignable, step.Key)
		}
		if step.Index >= cur.Len() {
			if step.Index-cur.Len() > MaxIndexGap {
				return reflect.Value{}, fmt.Errorf("%w: %s is more than %d past the end of a sequence of %d",
					ErrNotAssignable, step, MaxIndexGap, cur.Len())
			}
			grown := reflect.MakeSlice(cur.Type(), step.Index+1, step.Index+1)
			reflect.Copy(grown, cur)
			cur = grown
		}
		elem := cur.Index(step.Index)
		updated, err := assign(elem, steps[1:], v)
		if err != nil {
			return reflect.Value{}, err
		}
		if err := set(elem, updated); err != nil {
			return reflect.Value{}, err
		}
		return cur, nil

	case reflect.Array:
		if !step.IsIndex || step.Index >= cur.Len() {
			return reflect.Value{}, fmt.Errorf("%w: %s on a fixed array of %d", ErrNotAssignable, step, cur.Len())
		}
		cur = addressable(cur)
		elem := cur.Index(step.Index)
		updated, err := assign(elem, steps[1:], v)
		if err != nil {
			return reflect.Value{}, err
		}
		if err := set(elem, updated); err != nil {
			return reflect.Value{}, err
		}
		return cur, nil

	case reflect.Struct:
		if step.IsIndex {
			return reflect.Value{}, fmt.Errorf("%w: index %s on a struct", ErrNotAssignable, step)
		}
		cur = addressable(cur)
		field, ok := fieldByName(cur, step.Key)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s has no field %q", ErrPathNotFound, cur.Type(), step.Key)
		}
		updated, err := assign(field, steps[1:], v)
		if err != nil {
			return reflect.Value{}, err
		}
		if err := set(field, updated); err != nil {
			return reflect.Value{}, err
		}
		return cur, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s below a %s", ErrNotAssignable, step, cur.Kind())
}

// addressable returns v itself when it can be set, otherwise a settable
// copy.
func addressable(v reflect.Value) reflect.Value {
	if v.CanSet() {
		return v
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp
}

func set(dst, src reflect.Value) error {
	if !dst.CanSet() {
		return fmt.Errorf("%w: %s", ErrNotAssignable, dst.Type())
	}
	conv, err := convertTo(src, dst.Type())
	if err != nil {
		return err
	}
	dst.Set(conv)
	return nil
}

// convertTo adapts v to type t. Numbers convert between numeric kinds;
// anything else must be assignable.
func convertTo(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}
	if v.Kind() == reflect.Interface && v.IsNil() {
		return reflect.Zero(t), nil
	}
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	v = unwrap(v)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumber(v.Kind()) && isNumber(t.Kind()) {
		return v.Convert(t), nil
	}
	if v.Kind() == reflect.String && t.Kind() == reflect.String {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot store %s in %s", ErrNotAssignable, v.Type(), t)
}

func mapKey(t reflect.Type, step Step) (reflect.Value, bool) {
	kt := t.Key()
	switch {
	case kt.Kind() == reflect.String:
		name := step.Key
		if step.IsIndex {
			name = strconv.Itoa(step.Index)
		}
		return reflect.ValueOf(name).Convert(kt), true
	case isNumber(kt.Kind()) && step.IsIndex:
		return reflect.ValueOf(step.Index).Convert(kt), true
	}
	return reflect.Value{}, false
}

// fieldByName finds an exported field by Go name or json tag.
func fieldByName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return v.FieldByIndex(sf.Index), true
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
