package derive

import "reflect"

// Deps is an ordered list of comparison keys guarding a memoized slot.
//
// A nil Deps disables caching entirely; an empty (non-nil) Deps means the
// guarded computation runs once for the life of the owning component.
type Deps []any

// shallowEqual reports whether two keys are the same primitive value or the
// same reference. Slices, maps and funcs compare by identity of their backing
// store; nested contents are never inspected.
func shallowEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}

	switch av.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func:
		if av.IsNil() || bv.IsNil() {
			return av.IsNil() && bv.IsNil()
		}
		return av.Pointer() == bv.Pointer()
	default:
		if !av.Comparable() {
			return false
		}
		return a == b
	}
}

// depsEqual reports whether every key in next shallow-equals its counterpart
// in prev. A length mismatch counts as a change.
func depsEqual(prev, next Deps) bool {
	if len(prev) != len(next) {
		return false
	}
	for i := range next {
		if !shallowEqual(prev[i], next[i]) {
			return false
		}
	}
	return true
}

func cloneDeps(d Deps) Deps {
	if d == nil {
		return nil
	}
	out := make(Deps, len(d))
	copy(out, d)
	return out
}
