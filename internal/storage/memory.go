package storage

import (
	"context"
	"fmt"
	"sync"

	"catalogstudio/internal/domain"
)

// MemoryStore is a BlobStore for tests and throwaway deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[name]
	if !ok {
		return nil, fmt.Errorf("storage: %s: %w", name, domain.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, name)
	return nil
}

var _ domain.BlobStore = (*MemoryStore)(nil)
