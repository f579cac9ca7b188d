package database

import (
	"context"
	"sync"

	"flightcast/apperr"
)

// MemoryStore keeps entries in process memory with a byte quota counted over
// keys and values, like local storage does.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
	used    int64
	quota   int64
}

// NewMemoryStore creates a store holding at most quota bytes. quota <= 0 means unbounded.
func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
		quota:   quota,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := int64(len(key) + len(value))
	used := s.used + size
	if old, ok := s.entries[key]; ok {
		used -= int64(len(key) + len(old))
	}
	if s.quota > 0 && used > s.quota {
		return apperr.Quota("failed to set "+key, ErrQuotaExceeded)
	}

	s.entries[key] = value
	s.used = used
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]string)
	s.used = 0
	return nil
}

// Used returns the number of bytes currently stored.
func (s *MemoryStore) Used() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}
