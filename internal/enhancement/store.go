package enhancement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalogstudio/internal/domain"
)

// SessionStore keeps wizard sessions. Update runs fn with exclusive access
// to one session and returns a snapshot taken after fn.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	Delete(ctx context.Context, id string) error
	Len() int
}

type sessionEntry struct {
	mu sync.Mutex
	s  *Session
}

// MemoryStore holds sessions in process with one mutex per session.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*sessionEntry{}}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	c := s.Clone()
	m.sessions[s.ID] = &sessionEntry{s: &c}
	return nil
}

func (m *MemoryStore) entry(id string) (*sessionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return e, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	e, err := m.entry(id)
	if err != nil {
		return Session{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (Session, error) {
	e, err := m.entry(id)
	if err != nil {
		return Session{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	work := e.s.Clone()
	if err := fn(&work); err != nil {
		return e.s.Clone(), err
	}
	work.refreshPhase()
	e.s = &work
	return work.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions not touched since cutoff and returns how many went.
func (m *MemoryStore) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		e.mu.Lock()
		stale := e.s.UpdatedAt.Before(cutoff)
		e.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
