// Package memory provides in-memory implementations of driven stores.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore is an in-memory implementation of driven.ConversationStore.
// Turns are lost when the process exits.
type ConversationStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		sessions: make(map[string][]domain.Turn),
	}
}

// Append adds a turn and drops the oldest beyond maxTurns.
func (s *ConversationStore) Append(_ context.Context, sessionID string, turn domain.Turn, maxTurns int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], turn)
	if maxTurns > 0 && len(turns) > maxTurns {
		// Copy so the evicted prefix is released.
		turns = append([]domain.Turn(nil), turns[len(turns)-maxTurns:]...)
	}
	s.sessions[sessionID] = turns
	return nil
}

// Turns returns a copy of the session's turns, oldest first.
func (s *ConversationStore) Turns(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Clear forgets a session.
func (s *ConversationStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Sessions returns the IDs of sessions holding turns, sorted.
func (s *ConversationStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id, turns := range s.sessions {
		if len(turns) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases resources.
func (s *ConversationStore) Close() error {
	return nil
}
