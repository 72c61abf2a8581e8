package store

import (
	"context"
	"sync"
)

// Memory is a process-local Backend.
// Values are copied on the way in and out so callers cannot alias stored bytes.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string][]byte)}
}

// Get implements Backend.
func (m *Memory) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.docs[namespace][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set implements Backend.
func (m *Memory) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.docs[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.docs[namespace] = ns
	}
	ns[key] = append([]byte(nil), value...)
	return nil
}
