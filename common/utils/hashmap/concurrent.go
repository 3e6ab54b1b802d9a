package hashmap

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

var _ ConditionalHashMap[string, int] = (*ConcurrentMap[string, int])(nil)

// ConcurrentMap is a sharded, thread-safe HashMap backed by orcaman/concurrent-map.
type ConcurrentMap[K comparable, V any] struct {
	backend cmap.ConcurrentMap[K, V]
}

func NewConcurrentMap[V any](shards int) *ConcurrentMap[string, V] {
	if shards > 0 {
		cmap.SHARD_COUNT = shards
	}

	return &ConcurrentMap[string, V]{
		backend: cmap.New[V](),
	}
}

func (m *ConcurrentMap[K, V]) Delete(key K) {
	m.backend.Remove(key)
}

func (m *ConcurrentMap[K, V]) Load(key K) (V, bool) {
	return m.backend.Get(key)
}

func (m *ConcurrentMap[K, V]) LoadAndDelete(key K) (retVal V, retExists bool) {
	m.backend.RemoveCb(key, func(key K, val V, exists bool) bool {
		retVal = val
		retExists = exists
		return true
	})
	return
}

// LoadOrStore stores value under key unless the key is already present.
// The check and the insertion are performed while holding the key's shard lock.
func (m *ConcurrentMap[K, V]) LoadOrStore(key K, value V) (V, bool) {
	var (
		actual V
		loaded bool
	)

	m.backend.Upsert(key, value, func(exist bool, valueInMap V, newValue V) V {
		if exist {
			actual, loaded = valueInMap, true
			return valueInMap
		}

		actual = newValue
		return newValue
	})

	return actual, loaded
}

func (m *ConcurrentMap[K, V]) RemoveIf(key K, cond func(current V) bool) bool {
	return m.backend.RemoveCb(key, func(_ K, current V, exists bool) bool {
		return exists && cond(current)
	})
}

func (m *ConcurrentMap[K, V]) Range(cb func(K, V) bool) {
	next := true
	for item := range m.backend.IterBuffered() {
		if next {
			next = cb(item.Key, item.Val)
		}
		// iterate over all items to drain the channel
	}
}

// Values returns a snapshot of the values currently stored in the map.
func (m *ConcurrentMap[K, V]) Values() []V {
	values := make([]V, 0, m.backend.Count())
	m.Range(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

func (m *ConcurrentMap[K, V]) Store(key K, val V) {
	m.backend.Set(key, val)
}

func (m *ConcurrentMap[K, V]) Len() int {
	return m.backend.Count()
}
