package testutil

import (
	"fmt"
	"sync"
)

// MemoryStorage is an in-memory snapshot storage fake.
//
// Thread-safety: all methods lock, matching the production store's
// concurrency contract.
type MemoryStorage struct {
	mu    sync.Mutex
	data  map[string]map[string]string
	saves int
}

// NewMemoryStorage creates empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]map[string]string)}
}

// Load returns a copy of the snapshot under key, or an empty map.
func (s *MemoryStorage) Load(key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(map[string]string, len(s.data[key]))
	for k, v := range s.data[key] {
		snap[k] = v
	}
	return snap, nil
}

// Save replaces the snapshot under key with a copy of vars.
func (s *MemoryStorage) Save(key string, vars map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(map[string]string, len(vars))
	for k, v := range vars {
		snap[k] = v
	}
	s.data[key] = snap
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemoryStorage) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FailingStorage always errors, for exercising the degrade-gracefully
// path.
type FailingStorage struct{}

// Load always fails.
func (FailingStorage) Load(key string) (map[string]string, error) {
	return nil, fmt.Errorf("storage unavailable: load %s", key)
}

// Save always fails.
func (FailingStorage) Save(key string, vars map[string]string) error {
	return fmt.Errorf("storage unavailable: save %s", key)
}
