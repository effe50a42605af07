// Package storage provides the ephemeral key/value backends behind cart
// snapshots and rate limiting. Every backend implements fiber.Storage.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

var _ fiber.Storage = (*MemoryStorage)(nil)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStorage keeps entries in process memory. Entries vanish on restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStorage returns an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns nil without error for missing or expired keys.
func (s *MemoryStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.expired(entry) {
		return nil, nil
	}
	return append([]byte(nil), entry.value...), nil
}

// Set stores val under key. A zero exp never expires.
func (s *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	entry := memoryEntry{value: append([]byte(nil), val...)}
	if exp > 0 {
		entry.expiresAt = s.now().Add(exp)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Reset() error {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (s *MemoryStorage) Purge(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}
