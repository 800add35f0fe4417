package storage

import (
	"sync"
)

// MemoryKeyValue keeps values in process memory. Values are copied in and
// out so callers never share a backing array with the store.
type MemoryKeyValue struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryKeyValue() *MemoryKeyValue {
	return &MemoryKeyValue{records: make(map[string][]byte)}
}

func (m *MemoryKeyValue) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.records[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(val), true, nil
}

func (m *MemoryKeyValue) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = cloneBytes(value)
	return nil
}

func (m *MemoryKeyValue) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *MemoryKeyValue) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryKeyValue) Close() error { return nil }

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
