package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is used when Redis is unavailable. Sessions do not survive a
// restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	m.sessions[s.ID] = *s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(time.Now()) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
