package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MockStorage keeps the serialised values in memory.
type MockStorage struct {
	mutex    sync.Mutex
	Elements map[Key][]byte
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Elements: make(map[Key][]byte)}
}

func (m *MockStorage) Store(k Key, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal '%v': %w", k, err)
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.Elements[k] = b
	return nil
}

func (m *MockStorage) Load(k Key, value interface{}) error {
	m.mutex.Lock()
	b, ok := m.Elements[k]
	m.mutex.Unlock()
	if !ok {
		return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
	}
	if err := json.Unmarshal(b, value); err != nil {
		return fmt.Errorf("could not unmarshal '%v': %s: %w", k, err.Error(), CouldNotLoadErr)
	}
	return nil
}
