package otp

import (
	"context"
	"sync"
	"time"

	"rollcall/pkg/platform/sentinel"
)

// MemoryStore mirrors the Redis semantics for unit tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	codes   map[string]memoryEntry
	resends map[string]time.Time

	// now is swappable in tests to exercise expiry.
	now func() time.Time
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		codes:   make(map[string]memoryEntry),
		resends: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, identifier, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[identifier] = memoryEntry{code: code, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, identifier string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[identifier]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.codes, identifier)
		return "", sentinel.ErrNotFound
	}
	return entry.code, nil
}

func (s *MemoryStore) Delete(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, identifier)
	return nil
}

func (s *MemoryStore) ConsumeIfMatch(_ context.Context, identifier, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[identifier]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.codes, identifier)
		return false, nil
	}
	if entry.code != code {
		return false, nil
	}
	delete(s.codes, identifier)
	return true, nil
}

func (s *MemoryStore) ReserveResend(_ context.Context, identifier string, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, ok := s.resends[identifier]; ok && s.now().Before(until) {
		return false, nil
	}
	s.resends[identifier] = s.now().Add(window)
	return true, nil
}
