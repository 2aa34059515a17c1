// Package ordered provides an insertion-ordered map used for statement
// props and params, where the authored order is part of the output.
package ordered

// Map keeps keys in first-insertion order. Re-setting a key keeps its slot.
// The zero value is ready to use.
type Map[K comparable, V any] struct {
	keys []K
	vals map[K]V
}

// New returns an empty map with room for n entries.
func New[K comparable, V any](n int) *Map[K, V] {
	return &Map[K, V]{keys: make([]K, 0, n), vals: make(map[K]V, n)}
}

func (m *Map[K, V]) Set(k K, v V) {
	if m.vals == nil {
		m.vals = make(map[K]V)
	}
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

func (m *Map[K, V]) Get(k K) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.vals[k]
	return v, ok
}

// Value returns the value for k or the zero value.
func (m *Map[K, V]) Value(k K) V {
	v, _ := m.Get(k)
	return v
}

func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Delete removes k and closes the gap in the key order.
func (m *Map[K, V]) Delete(k K) bool {
	if !m.Has(k) {
		return false
	}
	delete(m.vals, k)
	for i, kk := range m.keys {
		if kk == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Rename replaces key old with key new in place, keeping the slot.
// Nothing happens when old is absent or new already exists.
func (m *Map[K, V]) Rename(old, new K) bool {
	v, ok := m.vals[old]
	if !ok {
		return false
	}
	if _, clash := m.vals[new]; clash {
		return false
	}
	for i, kk := range m.keys {
		if kk == old {
			m.keys[i] = new
			break
		}
	}
	delete(m.vals, old)
	m.vals[new] = v
	return true
}

func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in order.
func (m *Map[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each visits entries in order until fn returns false.
func (m *Map[K, V]) Each(fn func(K, V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (m *Map[K, V]) Clone() *Map[K, V] {
	out := New[K, V](m.Len())
	m.Each(func(k K, v V) bool {
		out.Set(k, v)
		return true
	})
	return out
}
