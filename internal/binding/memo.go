package binding

import "reflect"

// memo caches a single value and rebuilds it only when its dependency list
// changes. Dependencies are compared element-wise with ==; values whose
// dynamic type is not comparable always count as changed.
type memo[V any] struct {
	deps  []any
	value V
	set   bool
}

func (m *memo[V]) get(deps []any, build func() V) V {
	if m.set && sameDeps(m.deps, deps) {
		return m.value
	}
	m.deps = append(m.deps[:0:0], deps...)
	m.value = build()
	m.set = true
	return m.value
}

func sameDeps(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameDep(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameDep(a, b any) (same bool) {
	// Comparable struct types can still hold non-comparable interface values.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()

	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
