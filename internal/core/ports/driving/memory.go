package driving

import (
	"context"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// MemoryService keeps a bounded FIFO of turns per session.
type MemoryService interface {
	// Append records a turn, evicting the oldest beyond the cap.
	Append(ctx context.Context, sessionID, question, answer string) error

	// ContextFor renders the retained turns for the prompt.
	// Unknown or empty sessions yield "".
	ContextFor(ctx context.Context, sessionID string) (string, error)

	// Clear forgets a session.
	Clear(ctx context.Context, sessionID string) error

	// Stats reports how many turns a session holds.
	Stats(ctx context.Context, sessionID string) (domain.MemoryStats, error)

	// Sessions returns all session IDs holding turns.
	Sessions(ctx context.Context) ([]string, error)
}
