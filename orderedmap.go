package pic2ascii

// orderedMap is a map that remembers insertion order. Unlike a plain map
// it never overwrites: the first value stored under a key is kept.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newOrderedMap[K comparable, V any](capacity int) *orderedMap[K, V] {
	return &orderedMap[K, V]{
		keys:   make([]K, 0, capacity),
		values: make(map[K]V, capacity),
	}
}

// SetIfAbsent stores value under key unless key is already present.
// It reports whether the value was stored.
func (om *orderedMap[K, V]) SetIfAbsent(key K, value V) bool {
	if _, exists := om.values[key]; exists {
		return false
	}
	om.keys = append(om.keys, key)
	om.values[key] = value
	return true
}

// Get retrieves a value by key
func (om *orderedMap[K, V]) Get(key K) (V, bool) {
	val, exists := om.values[key]
	return val, exists
}

// Keys returns a copy of the keys in insertion order
func (om *orderedMap[K, V]) Keys() []K {
	return append([]K(nil), om.keys...)
}

// Iterate calls f for each key-value pair in insertion order
func (om *orderedMap[K, V]) Iterate(f func(key K, value V)) {
	for _, k := range om.keys {
		f(k, om.values[k])
	}
}

// Len returns the number of elements in the map
func (om *orderedMap[K, V]) Len() int {
	return len(om.keys)
}
