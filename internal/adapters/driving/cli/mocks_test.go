package cli

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
)

type mockAskService struct {
	result   *domain.AskResult
	err      error
	sessions []string
	asked    []string
}

func (m *mockAskService) Ask(_ context.Context, sessionID, question string) (*domain.AskResult, error) {
	m.sessions = append(m.sessions, sessionID)
	m.asked = append(m.asked, question)
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
	docs     map[domain.Folder][]domain.Document
	uploaded map[string]string
	deleted  []string
	err      error
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{
		docs:     map[domain.Folder][]domain.Document{},
		uploaded: map[string]string{},
	}
}

func (m *mockDocumentService) List(_ context.Context, folder domain.Folder) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs[folder], nil
}

func (m *mockDocumentService) Upload(_ context.Context, filename string, r io.Reader) (domain.Document, error) {
	if !strings.HasSuffix(filename, ".pdf") {
		return domain.Document{}, domain.ErrUnsupportedFileType
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Document{}, err
	}
	m.uploaded[filename] = string(data)
	return domain.Document{Filename: filename, Size: int64(len(data))}, nil
}

func (m *mockDocumentService) Delete(_ context.Context, folder domain.Folder, filename string) error {
	for _, d := range m.docs[folder] {
		if d.Filename == filename {
			m.deleted = append(m.deleted, string(folder)+"/"+filename)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockDocumentService) Open(_ context.Context, _ domain.Folder, _ string) (io.ReadCloser, domain.Document, error) {
	return io.NopCloser(bytes.NewReader(nil)), domain.Document{}, nil
}

type mockMemoryService struct {
	turns   map[string]int
	cleared []string
}

func newMockMemoryService() *mockMemoryService {
	return &mockMemoryService{turns: map[string]int{}}
}

func (m *mockMemoryService) Append(_ context.Context, id, _, _ string) error {
	m.turns[id]++
	return nil
}

func (m *mockMemoryService) ContextFor(_ context.Context, _ string) (string, error) { return "", nil }

func (m *mockMemoryService) Clear(_ context.Context, id string) error {
	delete(m.turns, id)
	m.cleared = append(m.cleared, id)
	return nil
}

func (m *mockMemoryService) Stats(_ context.Context, id string) (domain.MemoryStats, error) {
	return domain.MemoryStats{Count: m.turns[id], MaxSize: domain.DefaultMaxTurns}, nil
}

func (m *mockMemoryService) Sessions(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.turns))
	for id := range m.turns {
		ids = append(ids, id)
	}
	return ids, nil
}

type mockIndexer struct {
	ready       bool
	err         error
	stats       driving.IndexStats
	invalidated int
}

func (m *mockIndexer) EnsureReady(_ context.Context) (bool, error) { return m.ready, m.err }

func (m *mockIndexer) Invalidate() { m.invalidated++ }

func (m *mockIndexer) Search(_ context.Context, _ string, _ int) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockIndexer) Stats() driving.IndexStats { return m.stats }

type mockSettingsService struct {
	settings    domain.AppSettings
	hash        string
	llm         domain.AIProvider
	llmModel    string
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, _ string) error {
	m.llm = provider
	m.llmModel = model
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, _ string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	return nil
}

func (m *mockSettingsService) SetAdminPasswordHash(hash string) error {
	m.hash = hash
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ask      *mockAskService
	docs     *mockDocumentService
	memory   *mockMemoryService
	indexer  *mockIndexer
	settings *mockSettingsService
}

// setupTestServices installs fresh mocks and resets command flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ask:      &mockAskService{},
		docs:     newMockDocumentService(),
		memory:   newMockMemoryService(),
		indexer:  &mockIndexer{},
		settings: newMockSettingsService(),
	}
	SetServices(&Services{
		Ask:       ts.ask,
		Documents: ts.docs,
		Memory:    ts.memory,
		Indexer:   ts.indexer,
		Settings:  ts.settings,
	})
	resetFlags()

	return ts, func() {
		SetServices(nil)
		resetFlags()
	}
}

func resetFlags() {
	askSession = DefaultCLISession
	askJSON = false
	documentsSummaries = false
	adminPrintOnly = false
	adminUsername = ""
	tuiSession = ""
	serveAddr = ""
	serveWarmup = false
	configDir = ""
}

// executeCommand runs the root command with args and stdin, returning
// combined output.
func executeCommand(stdin string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
