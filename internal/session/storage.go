package session

import (
	"context"
	"errors"
	"sync"
)

// ErrSlotEmpty is returned by Storage.Load when nothing is stored under the key.
var ErrSlotEmpty = errors.New("session: slot empty")

// ErrSlotCorrupt marks a stored slot that holds no usable access token.
var ErrSlotCorrupt = errors.New("session: slot corrupt")

// Storage is a durable key/value slot. Implementations may also implement
// io.Closer; Store.Close closes them.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage is a Storage that lives as long as the process.
type MemoryStorage struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{slots: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	return nil
}
