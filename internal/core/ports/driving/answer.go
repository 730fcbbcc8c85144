package driving

import (
	"context"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// Answerer runs retrieval and generation for one question.
type Answerer interface {
	// Answer retrieves the most relevant chunks, sends one generation
	// request and returns the model's raw reply unmodified.
	Answer(ctx context.Context, question, conversationContext string) (string, error)
}

// AskService answers a session's question end to end.
type AskService interface {
	// Ask never fails for pipeline errors; those become a fixed apology.
	// Errors are only returned for a missing session ID.
	Ask(ctx context.Context, sessionID, question string) (*domain.AskResult, error)
}
