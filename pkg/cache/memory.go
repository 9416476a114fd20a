package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryStore is a bounded LRU. The least recently used entry is evicted once
// capacity is reached.
type MemoryStore struct {
	data *lru.Cache[string, string]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an LRU holding at most capacity entries.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	data, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{data: data}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.data.Get(key)
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.data.Add(key, value)
	return nil
}

func (s *MemoryStore) Purge(_ context.Context, key string) error {
	s.data.Remove(key)
	return nil
}

// Len reports the number of entries held.
func (s *MemoryStore) Len() int {
	return s.data.Len()
}
