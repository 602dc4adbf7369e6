package store

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// Sentinel errors for tree access.
var (
	ErrPathNotFound  = errors.New("path not found")
	ErrNotAssignable = errors.New("location is not assignable")
)

// Store owns the root of a data tree.
type Store struct {
	root any
}

// New returns a store over root. A nil root starts an empty mapping.
func New(root any) *Store {
	if root == nil {
		root = map[string]any{}
	}
	return &Store{root: root}
}

// Root returns the current root of the tree.
func (s *Store) Root() any {
	return s.root
}

// Lookup reads the value at path. Missing keys, out-of-range indices and
// nil intermediates yield ErrPathNotFound.
func (s *Store) Lookup(path string) (any, error) {
	steps, err := Steps(path)
	if err != nil {
		return nil, err
	}
	cur := reflect.ValueOf(s.root)
	for i, step := range steps {
		cur = unwrap(cur)
		next, ok := child(cur, step)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, Join(steps[:i+1]))
		}
		cur = next
	}
	cur = unwrap(cur)
	if !cur.IsValid() {
		return nil, nil
	}
	return cur.Interface(), nil
}

// Write stores v at path, mutating the tree in place.
func (s *Store) Write(path string, v any) error {
	steps, err := Steps(path)
	if err != nil {
		return err
	}
	updated, err := assign(reflect.ValueOf(s.root), steps, v)
	if err != nil {
		return fmt.Errorf("write %s: %w", Join(steps), err)
	}
	if updated.IsValid() {
		s.root = updated.Interface()
	}
	slog.Debug("store write", "path", Join(steps))
	return nil
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// child reads one step below cur.
func child(cur reflect.Value, step Step) (reflect.Value, bool) {
	for cur.IsValid() && cur.Kind() == reflect.Pointer {
		if cur.IsNil() {
			return reflect.Value{}, false
		}
		cur = cur.Elem()
	}
	if !cur.IsValid() {
		return reflect.Value{}, false
	}
	switch cur.Kind() {
	case reflect.Map:
		key, ok := mapKey(cur.Type(), step)
		if !ok {
			return reflect.Value{}, false
		}
		got := cur.MapIndex(key)
		return got, got.IsValid()
	case reflect.Slice, reflect.Array:
		if !step.IsIndex || step.Index >= cur.Len() {
			return reflect.Value{}, false
		}
		return cur.Index(step.Index), true
	case reflect.Struct:
		if step.IsIndex {
			return reflect.Value{}, false
		}
		return fieldByName(cur, step.Key)
	}
	return reflect.Value{}, false
}
