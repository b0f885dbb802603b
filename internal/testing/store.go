package testing

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/desertthunder/taskr/internal/shared"
)

// MemoryStore is an in-memory key-value store with failure injection.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string

	GetErr     error  // Returned by every Get
	SetErr     error  // Returned by every Set, or only for FailSetKey when set
	FailSetKey string // Restricts SetErr to a single key
	RemoveErr  error  // Returned by Remove after nothing is removed

	Sets    int
	Removes int
}

func NewMemoryStore(seed map[string]string) *MemoryStore {
	data := make(map[string]string, len(seed))
	maps.Copy(data, seed)
	return &MemoryStore{data: data}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return "", m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", shared.ErrKeyNotFound, key)
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sets++
	if m.SetErr != nil && (m.FailSetKey == "" || m.FailSetKey == key) {
		return m.SetErr
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Removes++
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Snapshot returns a copy of the stored keys.
func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.data))
	maps.Copy(out, m.data)
	return out
}
