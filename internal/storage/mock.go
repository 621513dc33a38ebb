package storage

import (
	"encoding/json"
	"fmt"
)

// MockShard creates in-memory storage shards.
func MockShard() Shard {
	return func(shard string) (Persistence, error) {
		return NewMockStorage(), nil
	}
}

// MockStorage keeps the stored values in memory.
type MockStorage struct {
	Elements map[Key]interface{}
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Elements: make(map[Key]interface{})}
}

func (m *MockStorage) Store(k Key, value interface{}) error {
	m.Elements[k] = value
	return nil
}

// Load copies the stored value into the given one through its json representation.
func (m *MockStorage) Load(k Key, value interface{}) error {
	v, ok := m.Elements[k]
	if !ok {
		return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not marshal '%v': %w", k, CouldNotLoadErr)
	}
	if err := json.Unmarshal(b, value); err != nil {
		return fmt.Errorf("could not unmarshal '%v': %w", k, CouldNotLoadErr)
	}
	return nil
}
