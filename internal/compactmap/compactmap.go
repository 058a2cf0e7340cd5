// Package compactmap provides an insertion-ordered associative container for
// very small collections.
//
// Every lookup is a linear scan over a keys slice kept in lockstep with a
// values slice. For a handful of entries per tenant this costs less memory
// than a hash map and is just as fast. It is a poor choice past ~50 entries.
//
// A Map is not safe for concurrent use.
package compactmap

import (
	"iter"
	"slices"
)

// Map is an insertion-ordered map with O(N) operations.
// The zero value is an empty map ready to use.
type Map[K comparable, V any] struct {
	keys   []K
	values []V
}

// New returns an empty map with room for sizeHint entries.
func New[K comparable, V any](sizeHint int) *Map[K, V] {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Map[K, V]{
		keys:   make([]K, 0, sizeHint),
		values: make([]V, 0, sizeHint),
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Lookup returns the value stored under k.
func (m *Map[K, V]) Lookup(k K) (V, bool) {
	if i := slices.Index(m.keys, k); i >= 0 {
		return m.values[i], true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is present.
func (m *Map[K, V]) Contains(k K) bool {
	return slices.Contains(m.keys, k)
}

// Upsert stores v under k. An existing key keeps its original position.
func (m *Map[K, V]) Upsert(k K, v V) {
	if i := slices.Index(m.keys, k); i >= 0 {
		m.values[i] = v
		return
	}
	m.keys = append(m.keys, k)
	m.values = append(m.values, v)
}

// Remove deletes k and returns its value. Later entries shift down by one.
func (m *Map[K, V]) Remove(k K) (V, bool) {
	i := slices.Index(m.keys, k)
	if i < 0 {
		var zero V
		return zero, false
	}
	v := m.values[i]
	m.keys = slices.Delete(m.keys, i, i+1)
	m.values = slices.Delete(m.values, i, i+1)
	return v, true
}

// Clear removes every entry, keeping the allocated capacity.
func (m *Map[K, V]) Clear() {
	clear(m.keys)
	clear(m.values)
	m.keys = m.keys[:0]
	m.values = m.values[:0]
}

// ForEach calls fn for each entry in insertion order.
func (m *Map[K, V]) ForEach(fn func(K, V)) {
	for i, k := range m.keys {
		fn(k, m.values[i])
	}
}

// All returns an iterator over the entries in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.values[i]) {
				return
			}
		}
	}
}

// Filter returns a new map holding the entries for which keep returns true,
// in their original relative order.
func (m *Map[K, V]) Filter(keep func(K, V) bool) *Map[K, V] {
	out := New[K, V](0)
	for i, k := range m.keys {
		if keep(k, m.values[i]) {
			out.keys = append(out.keys, k)
			out.values = append(out.values, m.values[i])
		}
	}
	return out
}

// ValuesMatching returns, in insertion order, the values whose key satisfies match.
func (m *Map[K, V]) ValuesMatching(match func(K) bool) []V {
	var out []V
	for i, k := range m.keys {
		if match(k) {
			out = append(out, m.values[i])
		}
	}
	return out
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	return slices.Clone(m.keys)
}

// Values returns a copy of the values in insertion order.
func (m *Map[K, V]) Values() []V {
	return slices.Clone(m.values)
}

// Snapshot copies the entries into a built-in map.
func (m *Map[K, V]) Snapshot() map[K]V {
	out := make(map[K]V, len(m.keys))
	for i, k := range m.keys {
		out[k] = m.values[i]
	}
	return out
}
