package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps saves in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	saves map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{saves: map[string][]byte{}}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.saves[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (m *MemoryBackend) Put(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[key] = append([]byte(nil), payload...)
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, key)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
