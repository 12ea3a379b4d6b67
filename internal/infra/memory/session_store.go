package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Runner
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Runner),
	}
}

func (s *SessionStore) Put(r *app.Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[r.ID()] = r
}

func (s *SessionStore) Get(sessionID string) (*app.Runner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.sessions[sessionID]
	return r, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// LiveCount is Len for callers that only know about contexts.
func (s *SessionStore) LiveCount(context.Context) (int, error) {
	return s.Len(), nil
}
