package session

import (
	"context"
	"sync"
	"time"

	"github.com/pokemon-tcg/pkg/keygen"
)

type memoryEntry struct {
	userID    uint
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart
// and are not shared between instances.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

// Create implements Store
func (s *MemoryStore) Create(_ context.Context, userID uint) (string, error) {
	id := keygen.SessionID()

	s.mu.Lock()
	s.sessions[id] = memoryEntry{userID: userID, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return id, nil
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, sessionID string) (uint, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return 0, ErrSessionNotFound
	}
	return entry.userID, nil
}

// Delete implements Store
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// DeleteUser implements Store
func (s *MemoryStore) DeleteUser(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.sessions {
		if entry.userID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// Sweep drops expired sessions and returns how many were removed
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
