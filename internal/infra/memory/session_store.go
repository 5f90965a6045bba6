package memory

import (
	"sync"

	"math-quiz-bot/internal/app"
)

// SessionStore is the in-memory implementation of app.SessionStore, keyed
// by user id. Put replaces unconditionally; a new begin discards the old
// session. Sessions are never deleted, matching their in-memory lifecycle.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(userID string, session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

func (s *SessionStore) Get(userID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}
