package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/domain/entity"
)

// SessionStore keeps in-progress sessions in process memory.
// Sessions are copied on the way in and out so callers never share state with the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*entity.Session)}
}

// Save inserts or replaces a session
func (s *SessionStore) Save(ctx context.Context, session *entity.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Snapshot()
	return nil
}

// Get returns a copy of the session, or (nil, nil) when it does not exist
func (s *SessionStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return session.Snapshot(), nil
}

// Delete removes a session. Unknown IDs are ignored.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// List returns every session, oldest first
func (s *SessionStore) List(ctx context.Context) ([]*entity.Session, error) {
	s.mu.RLock()
	out := make([]*entity.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Snapshot())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Verify interface compliance
var _ port.SessionRepository = (*SessionStore)(nil)
