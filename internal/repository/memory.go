package repository

import (
	"context"
	"sync"
)

// memoryKV is an in-process KVStore used by tests and local runs. It is
// deliberately simple: one mutex over two maps, same read semantics as
// the Redis implementation (missing keys read as zero values).
type memoryKV struct {
	mu      sync.Mutex
	strings map[string]string
	hashes  map[string]map[string]string
}

// NewMemoryKV creates an empty in-memory KVStore
func NewMemoryKV() KVStore {
	return &memoryKV{
		strings: make(map[string]string),
		hashes:  make(map[string]map[string]string),
	}
}

func (m *memoryKV) GetHash(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.hashes[key]))
	for field, value := range m.hashes[key] {
		out[field] = value
	}
	return out, nil
}

func (m *memoryKV) SetHashField(ctx context.Context, key, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	m.hashes[key][field] = value
	return nil
}

func (m *memoryKV) GetString(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.strings[key], nil
}

func (m *memoryKV) SetString(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.strings[key] = value
	return nil
}

func (m *memoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.strings, key)
	delete(m.hashes, key)
	return nil
}
