package configuration

import (
	"context"
	"sync"
)

// MemoryStore keeps settings in memory only.
type MemoryStore struct {
	mu     sync.RWMutex
	layers *layers
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		layers: newLayers(),
	}
}

func (s *MemoryStore) Settings(_ context.Context, resource string) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.layers.settings(resource), nil
}

func (s *MemoryStore) UpdateSetting(_ context.Context, key string, value interface{}, resource string, target Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.layers.set(key, value, resource, target)
}

func (s *MemoryStore) Close() error {
	return nil
}
