package storage

import (
	"fmt"
	"os"
	"sync"
)

// Memory is an in-process Provider. Values are copied in and out so
// callers never share buffers with the store.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// NewMemory returns an empty Memory provider.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Read(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("storage: read %s: %w", key, os.ErrNotExist)
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Write(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Writes returns how many Write calls have succeeded.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
