package driven

import (
	"context"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// ConversationStore persists per-session turn history.
type ConversationStore interface {
	// Append adds a turn and evicts the oldest turns beyond maxTurns.
	Append(ctx context.Context, sessionID string, turn domain.Turn, maxTurns int) error

	// Turns returns the retained turns, oldest first.
	// An unknown session yields an empty slice.
	Turns(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Clear forgets a session. Clearing an unknown session is not an error.
	Clear(ctx context.Context, sessionID string) error

	// Sessions returns the IDs of all sessions holding turns.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
