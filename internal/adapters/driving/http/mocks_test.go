package http

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
)

// mockAskService records questions and returns a canned result.
type mockAskService struct {
	mu        sync.Mutex
	questions []string
	sessions  []string
	result    *domain.AskResult
	err       error
}

func (m *mockAskService) Ask(_ context.Context, sessionID, question string) (*domain.AskResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, question)
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

// mockDocumentService keeps files in memory.
type mockDocumentService struct {
	mu          sync.Mutex
	files       map[domain.Folder]map[string][]byte
	invalidated int
	err         error
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{
		files: map[domain.Folder]map[string][]byte{
			domain.FolderUploads:   {},
			domain.FolderDownloads: {},
		},
	}
}

func (m *mockDocumentService) put(folder domain.Folder, name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[folder][name] = []byte(content)
}

func (m *mockDocumentService) has(folder domain.Folder, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[folder][name]
	return ok
}

func (m *mockDocumentService) List(_ context.Context, folder domain.Folder) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !folder.IsValid() {
		return nil, domain.ErrInvalidFolder
	}
	docs := []domain.Document{}
	for name, data := range m.files[folder] {
		docs = append(docs, domain.Document{Filename: name, Size: int64(len(data)), ModTime: time.Unix(0, 0)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

func (m *mockDocumentService) Upload(_ context.Context, filename string, r io.Reader) (domain.Document, error) {
	if m.err != nil {
		return domain.Document{}, m.err
	}
	if filename == "" {
		return domain.Document{}, domain.ErrInvalidInput
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return domain.Document{}, domain.ErrUnsupportedFileType
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Document{}, err
	}
	m.put(domain.FolderUploads, filename, string(data))
	m.mu.Lock()
	m.invalidated++
	m.mu.Unlock()
	return domain.Document{Filename: filename, Size: int64(len(data))}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, folder domain.Folder, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !folder.IsValid() {
		return domain.ErrInvalidFolder
	}
	if _, ok := m.files[folder][filename]; !ok {
		return domain.ErrNotFound
	}
	delete(m.files[folder], filename)
	if folder == domain.FolderUploads {
		m.invalidated++
	}
	return nil
}

func (m *mockDocumentService) Open(_ context.Context, folder domain.Folder, filename string) (io.ReadCloser, domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[folder][filename]
	if !ok {
		return nil, domain.Document{}, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), domain.Document{Filename: filename, Size: int64(len(data))}, nil
}

// mockMemoryService counts turns per session.
type mockMemoryService struct {
	mu      sync.Mutex
	turns   map[string]int
	cleared []string
}

func newMockMemoryService() *mockMemoryService {
	return &mockMemoryService{turns: make(map[string]int)}
}

func (m *mockMemoryService) Append(_ context.Context, id, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[id]++
	return nil
}

func (m *mockMemoryService) ContextFor(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (m *mockMemoryService) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, id)
	m.cleared = append(m.cleared, id)
	return nil
}

func (m *mockMemoryService) Stats(_ context.Context, id string) (domain.MemoryStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.MemoryStats{Count: m.turns[id], MaxSize: domain.DefaultMaxTurns}, nil
}

func (m *mockMemoryService) Sessions(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.turns))
	for id := range m.turns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// mockIndexer reports fixed stats.
type mockIndexer struct {
	stats driving.IndexStats
}

func (m *mockIndexer) EnsureReady(_ context.Context) (bool, error) {
	return m.stats.Ready, nil
}

func (m *mockIndexer) Invalidate() {}

func (m *mockIndexer) Search(_ context.Context, _ string, _ int) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockIndexer) Stats() driving.IndexStats {
	return m.stats
}
