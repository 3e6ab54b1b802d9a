package hashmap

import (
	"fmt"
	"reflect"

	"github.com/zhangjyr/hashmap"
)

var _ HashMap[string, int] = (*CornelkMap[string, int])(nil)

// CornelkMap is a lock-free HashMap backed by zhangjyr/hashmap. It suits read-mostly caches
// whose keys are strings, where lookups vastly outnumber writes.
type CornelkMap[K any, V any] struct {
	hashmap   *hashmap.HashMap
	stringKey bool
}

func NewCornelkMap[K any, V any](size int) *CornelkMap[K, V] {
	var key K
	return &CornelkMap[K, V]{
		stringKey: reflect.TypeOf(key).Kind() == reflect.String,
		hashmap:   hashmap.New((uintptr)(size)),
	}
}

func (m *CornelkMap[K, V]) Delete(key K) {
	m.hashmap.Del(key)
}

func (m *CornelkMap[K, V]) Load(key K) (ret V, ok bool) {
	v, ok := m.get(key)
	if !ok || v == nil || v == deleted {
		return ret, false
	}

	ret, ok = v.(V)
	if !ok {
		panic(fmt.Sprintf("CornelkMap.Load: type mismatch for key %v: %T", key, v))
	}
	return ret, true
}

func (m *CornelkMap[K, V]) LoadAndDelete(key K) (ret V, retExists bool) {
	v, retExists := m.get(key)
	if !retExists || v == deleted {
		return ret, false
	}

	// Tombstone the entry first so that concurrent callers cannot both claim it.
	for !m.hashmap.Cas(key, v, deleted) {
		v, retExists = m.get(key)
		if !retExists || v == deleted {
			return ret, false
		}
	}

	if v != nil {
		ret = v.(V)
	}
	m.hashmap.Del(key)
	return ret, true
}

func (m *CornelkMap[K, V]) LoadOrStore(key K, value V) (ret V, loaded bool) {
	actual, loaded := m.hashmap.GetOrInsert(key, value)
	if actual != nil && actual != deleted {
		ret = actual.(V)
	}
	return ret, loaded
}

func (m *CornelkMap[K, V]) Range(cb func(K, V) bool) {
	next := true
	for item := range m.hashmap.Iter() {
		if next && item.Value != nil && item.Value != deleted {
			v, _ := item.Value.(V)
			next = cb(item.Key.(K), v)
		}
		// iterate over all items to drain the channel
	}
}

// Values returns a snapshot of the values currently stored in the map.
func (m *CornelkMap[K, V]) Values() []V {
	values := make([]V, 0, m.hashmap.Len())
	m.Range(func(_ K, v V) bool {
		values = append(values, v)
		return true
	})
	return values
}

func (m *CornelkMap[K, V]) Store(key K, val V) {
	m.hashmap.Set(key, val)
}

func (m *CornelkMap[K, V]) Len() int {
	return m.hashmap.Len()
}

func (m *CornelkMap[K, V]) get(key K) (interface{}, bool) {
	if m.stringKey {
		return m.hashmap.GetStringKey(any(key).(string))
	}
	return m.hashmap.Get(key)
}
