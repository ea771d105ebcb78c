// Package session provides the in-memory session store mapping session ids
// to conversation state.
//
// Sessions live for the process lifetime; there is no eviction and no
// persistence across restarts. The map is safe for concurrent access across
// distinct session keys. Callers must not dispatch two concurrent turns for
// the same session id: turn processing for one session is the caller's
// responsibility to serialize.
package session

import (
	"log/slog"
	"sync"

	"github.com/amaan34/tailortalk/internal/models"
)

// Store holds one ConversationState per session id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.ConversationState
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*models.ConversationState)}
}

// GetOrCreate returns the state for the session, creating a fresh one on
// first contact: all booleans false, empty collections, empty intent.
func (s *Store) GetOrCreate(sessionID string) *models.ConversationState {
	s.mu.RLock()
	state, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return state
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the write lock; another goroutine may have created it.
	if state, ok := s.sessions[sessionID]; ok {
		return state
	}
	state = models.NewConversationState(sessionID)
	s.sessions[sessionID] = state
	slog.Debug("session.GetOrCreate: created new session", "sessionID", sessionID)
	return state
}

// Save stores the state under the session id.
func (s *Store) Save(sessionID string, state *models.ConversationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = state
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
