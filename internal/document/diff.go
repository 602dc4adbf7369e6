package document

import (
	"fmt"
	"reflect"
)

// Diff returns the writes that turn old into updated. Both roots must be
// objects.
//
// Objects are compared key by key. A sequence whose length changed is
// written whole; otherwise its elements are compared by index. Keys that
// disappeared are written as nil. Unchanged subtrees produce no writes.
func Diff(old, updated any) (map[string]any, error) {
	o, ok := old.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("old: %w", ErrNotObject)
	}
	u, ok := updated.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("updated: %w", ErrNotObject)
	}
	changes := make(map[string]any)
	diffObject("", o, u, changes)
	return changes, nil
}

func diffObject(prefix string, old, updated map[string]any, changes map[string]any) {
	for k, nv := range updated {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		ov, ok := old[k]
		if !ok {
			changes[p] = nv
			continue
		}
		diffValue(p, ov, nv, changes)
	}
	for k := range old {
		if _, ok := updated[k]; ok {
			continue
		}
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		changes[p] = nil
	}
}

func diffValue(p string, old, updated any, changes map[string]any) {
	switch nv := updated.(type) {
	case map[string]any:
		if ov, ok := old.(map[string]any); ok {
			diffObject(p, ov, nv, changes)
			return
		}
	case []any:
		if ov, ok := old.([]any); ok && len(ov) == len(nv) {
			for i := range nv {
				diffValue(fmt.Sprintf("%s[%d]", p, i), ov[i], nv[i], changes)
			}
			return
		}
	}
	if !reflect.DeepEqual(old, updated) {
		changes[p] = updated
	}
}
