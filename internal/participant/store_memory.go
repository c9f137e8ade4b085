package participant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rollcall/pkg/platform/sentinel"
)

// MemoryStore keeps the same contract as RedisStore for unit tests and local
// runs. It intentionally favors clarity over performance.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]Participant
	emails  map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[int64]Participant),
		emails:  make(map[string]int64),
	}
}

func (s *MemoryStore) Create(_ context.Context, p Participant) (Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if _, exists := s.emails[p.Email]; exists {
		return Participant{}, fmt.Errorf("email %q already registered: %w", p.Email, sentinel.ErrConflict)
	}

	p.ID = s.nextID
	p.Confirmed = false
	p.CreatedAt = time.Now().UTC()

	s.records[p.ID] = p
	s.emails[p.Email] = p.ID
	return p, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.records[id]; ok {
		return p, nil
	}
	return Participant{}, sentinel.ErrNotFound
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.emails[email]; ok {
		return s.records[id], nil
	}
	return Participant{}, sentinel.ErrNotFound
}

func (s *MemoryStore) GetAll(_ context.Context) ([]Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participants := make([]Participant, 0, len(s.records))
	for _, p := range s.records {
		participants = append(participants, p)
	}
	return participants, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[id]
	if !ok {
		return false, nil
	}
	delete(s.records, id)
	delete(s.emails, p.Email)
	return true, nil
}

func (s *MemoryStore) SetConfirmed(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Confirmed = true
	s.records[id] = p
	return nil
}
