package hashmap

var (
	deleted = &struct{}{}
)

// BaseHashMap is the subset of map operations shared by every backend in this package.
type BaseHashMap[K any, V any] interface {
	Delete(K)
	Load(K) (val V, loaded bool)
	LoadAndDelete(K) (val V, exists bool)
	LoadOrStore(K, V) (val V, loaded bool)

	// Range iterates over the map's key/value pairs. Iteration stops once the callback returns false.
	Range(func(K, V) (contd bool))

	Store(K, V)
}

type HashMap[K any, V any] interface {
	BaseHashMap[K, V]
	Len() int
}

// ConditionalHashMap is a HashMap whose entries can be removed only when they still satisfy a predicate.
// The check and the removal happen atomically with respect to other writers of the same key.
type ConditionalHashMap[K any, V any] interface {
	HashMap[K, V]

	// RemoveIf deletes the entry stored under key if, and only if, an entry exists and cond returns true for it.
	// RemoveIf returns true if the entry was deleted.
	RemoveIf(key K, cond func(current V) bool) bool
}
