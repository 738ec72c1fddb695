package client

import (
	"context"
	"encoding/json"
	"sync"

	"lunasync/internal/domain/record"
)

// MemoryStorage временное in-memory хранилище. Используется, если SQLite
// недоступен, и в тестах.
type MemoryStorage struct {
	mu          sync.RWMutex
	collections map[record.Collection][]json.RawMessage
	scalars     map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		collections: make(map[record.Collection][]json.RawMessage),
		scalars:     make(map[string]string),
	}
}

func (m *MemoryStorage) ReadCollection(_ context.Context, name record.Collection) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneDocs(m.collections[name]), nil
}

func (m *MemoryStorage) WriteCollection(_ context.Context, name record.Collection, docs []json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections[name] = cloneDocs(docs)
	return nil
}

func (m *MemoryStorage) ReadScalar(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.scalars[key]
	return value, ok, nil
}

func (m *MemoryStorage) WriteScalar(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scalars[key] = value
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func cloneDocs(docs []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, doc := range docs {
		out[i] = append(json.RawMessage(nil), doc...)
	}
	return out
}
