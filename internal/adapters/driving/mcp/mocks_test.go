package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

type mockAskService struct {
	result   *domain.AskResult
	err      error
	sessions []string
}

func (m *mockAskService) Ask(_ context.Context, sessionID, question string) (*domain.AskResult, error) {
	m.sessions = append(m.sessions, sessionID)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		r := *m.result
		r.SessionID = sessionID
		return &r, nil
	}
	return &domain.AskResult{Response: "answer to " + question, SessionID: sessionID}, nil
}

type mockDocumentService struct {
	docs map[domain.Folder][]domain.Document
	err  error
}

func (m *mockDocumentService) List(_ context.Context, folder domain.Folder) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs[folder], nil
}

func (m *mockDocumentService) Upload(_ context.Context, _ string, _ io.Reader) (domain.Document, error) {
	return domain.Document{}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ domain.Folder, _ string) error {
	return nil
}

func (m *mockDocumentService) Open(_ context.Context, _ domain.Folder, _ string) (io.ReadCloser, domain.Document, error) {
	return nil, domain.Document{}, domain.ErrNotFound
}

type mockMemoryService struct {
	cleared []string
	err     error
}

func (m *mockMemoryService) Append(_ context.Context, _, _, _ string) error { return nil }

func (m *mockMemoryService) ContextFor(_ context.Context, _ string) (string, error) { return "", nil }

func (m *mockMemoryService) Clear(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.cleared = append(m.cleared, id)
	return nil
}

func (m *mockMemoryService) Stats(_ context.Context, _ string) (domain.MemoryStats, error) {
	return domain.MemoryStats{MaxSize: domain.DefaultMaxTurns}, nil
}

func (m *mockMemoryService) Sessions(_ context.Context) ([]string, error) { return nil, nil }
