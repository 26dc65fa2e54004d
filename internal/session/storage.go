package session

import (
	"errors"
	"sync"
)

// TokenKey is the single storage key holding the raw bearer token.
const TokenKey = "token"

// ErrNotFound is returned by a Storage when the key has no value.
var ErrNotFound = errors.New("key not found")

// Storage is the local persistent key/value store backing the session.
// It is the equivalent of browser local storage: string keys, string values.
type Storage interface {
	Load(key string) (string, error)
	Save(key, value string) error
	Delete(key string) error
}

// MemoryStorage keeps values in process memory. Useful for tests and for
// one-shot invocations that should not leave a token behind.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Load(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
