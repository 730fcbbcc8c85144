package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
)

// Ensure MemoryService implements the interface.
var _ driving.MemoryService = (*MemoryService)(nil)

// conversationHeader opens the rendered conversation context.
const conversationHeader = "PREVIOUS CONVERSATION:\n"

// MemoryService keeps a bounded history of turns per session.
type MemoryService struct {
	store    driven.ConversationStore
	maxTurns int
	now      func() time.Time
}

// NewMemoryService creates a memory service keeping at most maxTurns
// turns per session. A non-positive maxTurns uses domain.DefaultMaxTurns.
func NewMemoryService(store driven.ConversationStore, maxTurns int) *MemoryService {
	if maxTurns <= 0 {
		maxTurns = domain.DefaultMaxTurns
	}
	return &MemoryService{
		store:    store,
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

// Append records a turn, evicting the oldest beyond the cap.
func (s *MemoryService) Append(ctx context.Context, sessionID, question, answer string) error {
	if sessionID == "" {
		return fmt.Errorf("session id: %w", domain.ErrInvalidInput)
	}

	turn := domain.Turn{
		Question:  question,
		Answer:    answer,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Append(ctx, sessionID, turn, s.maxTurns); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// ContextFor renders the retained turns oldest first:
//
//	PREVIOUS CONVERSATION:
//	User: <question>
//	AI: <answer>
//
// Unknown or empty sessions yield "".
func (s *MemoryService) ContextFor(ctx context.Context, sessionID string) (string, error) {
	turns, err := s.store.Turns(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load turns: %w", err)
	}
	return RenderConversation(turns), nil
}

// RenderConversation formats turns for the prompt.
func RenderConversation(turns []domain.Turn) string {
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(conversationHeader)
	for _, t := range turns {
		b.WriteString("User: ")
		b.WriteString(t.Question)
		b.WriteString("\nAI: ")
		b.WriteString(t.Answer)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Clear forgets a session.
func (s *MemoryService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Stats reports how many turns a session holds.
func (s *MemoryService) Stats(ctx context.Context, sessionID string) (domain.MemoryStats, error) {
	turns, err := s.store.Turns(ctx, sessionID)
	if err != nil {
		return domain.MemoryStats{}, fmt.Errorf("load turns: %w", err)
	}
	return domain.MemoryStats{Count: len(turns), MaxSize: s.maxTurns}, nil
}

// Sessions returns all session IDs holding turns.
func (s *MemoryService) Sessions(ctx context.Context) ([]string, error) {
	ids, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}
