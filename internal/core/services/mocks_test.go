package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
)

// mockConfigStore implements driven.ConfigStore over a map.
type mockConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }

func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Path() string { return ":memory:" }

// mockFileStore implements driven.FileStore in memory.
type mockFileStore struct {
	mu      sync.Mutex
	folders map[domain.Folder]map[string][]byte
	listErr error
}

func newMockFileStore(uploads ...string) *mockFileStore {
	m := &mockFileStore{folders: map[domain.Folder]map[string][]byte{
		domain.FolderUploads:   {},
		domain.FolderDownloads: {},
	}}
	for _, name := range uploads {
		m.folders[domain.FolderUploads][name] = []byte("%PDF")
	}
	return m
}

func (m *mockFileStore) List(folder domain.Folder) ([]domain.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make([]domain.Document, 0, len(m.folders[folder]))
	for name, data := range m.folders[folder] {
		docs = append(docs, domain.Document{Filename: name, Path: string(folder) + "/" + name, Size: int64(len(data))})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs, nil
}

func (m *mockFileStore) Save(folder domain.Folder, filename string, r io.Reader) (domain.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[folder][filename] = data
	return domain.Document{Filename: filename, Path: string(folder) + "/" + filename, Size: int64(len(data))}, nil
}

func (m *mockFileStore) Open(folder domain.Folder, filename string) (io.ReadCloser, domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.folders[folder][filename]
	if !ok {
		return nil, domain.Document{}, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), domain.Document{Filename: filename, Size: int64(len(data))}, nil
}

func (m *mockFileStore) Delete(folder domain.Folder, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.folders[folder][filename]; !ok {
		return domain.ErrNotFound
	}
	delete(m.folders[folder], filename)
	return nil
}

func (m *mockFileStore) Exists(folder domain.Folder, filename string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.folders[folder][filename]
	return ok
}

func (m *mockFileStore) Path(folder domain.Folder, filename string) (string, error) {
	return string(folder) + "/" + filename, nil
}

// mockExtractor returns canned page text per filename.
type mockExtractor struct {
	texts map[string][]string
	errs  map[string]error
}

func (m *mockExtractor) Extract(_ context.Context, doc domain.Document) ([]domain.Page, error) {
	if err := m.errs[doc.Filename]; err != nil {
		return nil, err
	}
	var pages []domain.Page
	for i, text := range m.texts[doc.Filename] {
		pages = append(pages, domain.Page{Filename: doc.Filename, Path: doc.Path, Number: i + 1, Content: text})
	}
	return pages, nil
}

// mockPipeline turns each non-empty page into one chunk.
type mockPipeline struct {
	mu    sync.Mutex
	count int
}

func (m *mockPipeline) Process(_ context.Context, page *domain.Page) ([]domain.Chunk, error) {
	if strings.TrimSpace(page.Content) == "" {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	return []domain.Chunk{{
		ID:       fmt.Sprintf("%s#%d", page.Filename, m.count),
		Content:  page.Content,
		Metadata: page.Metadata(),
	}}, nil
}

// mockEmbedder hashes words into a small bag-of-words vector so that
// texts sharing words are similar.
type mockEmbedder struct {
	err   error
	calls int
	mu    sync.Mutex
}

const mockDims = 256

func embedWords(text string) []float32 {
	vec := make([]float32, mockDims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,?!")
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%mockDims]++
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return embedWords(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedWords(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return mockDims }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

func (m *mockEmbedder) batchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockVectorIndex is a brute-force cosine index.
type mockVectorIndex struct {
	mu      sync.Mutex
	vectors map[string][]float32
	closed  bool

	// when gate is set, Search signals entered and blocks until gate closes
	entered chan struct{}
	gate    chan struct{}
}

func (m *mockVectorIndex) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockVectorIndex) Add(_ context.Context, id string, v []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[id] = v
	return nil
}

func (m *mockVectorIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vectors, id)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, q []float32, k int) ([]driven.VectorHit, error) {
	if m.gate != nil {
		m.entered <- struct{}{}
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("index closed")
	}
	hits := make([]driven.VectorHit, 0, len(m.vectors))
	for id, v := range m.vectors {
		hits = append(hits, driven.VectorHit{ChunkID: id, Similarity: cosine(q, v)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockVectorIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vectors)
}

func (m *mockVectorIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// mockVectorFactory records every generation it creates.
type mockVectorFactory struct {
	mu      sync.Mutex
	created []*mockVectorIndex
	err     error
}

func (m *mockVectorFactory) NewIndex(_ context.Context, _ int) (driven.VectorIndex, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := &mockVectorIndex{vectors: make(map[string][]float32)}
	m.created = append(m.created, idx)
	return idx, nil
}

func (m *mockVectorFactory) generations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

// mockLLM returns a canned reply and records the last prompt.
type mockLLM struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls++
	m.prompt = prompt
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockPromptStore serves a fixed template.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(_ string) (string, error) { return m.template, m.err }

func (m *mockPromptStore) Reload() {}

// mockConversationStore is a bounded in-memory store.
type mockConversationStore struct {
	mu       sync.Mutex
	sessions map[string][]domain.Turn
	err      error
}

func newMockConversationStore() *mockConversationStore {
	return &mockConversationStore{sessions: make(map[string][]domain.Turn)}
}

func (m *mockConversationStore) Append(_ context.Context, id string, turn domain.Turn, maxTurns int) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	turns := append(m.sessions[id], turn)
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	m.sessions[id] = turns
	return nil
}

func (m *mockConversationStore) Turns(_ context.Context, id string) ([]domain.Turn, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Turn(nil), m.sessions[id]...), nil
}

func (m *mockConversationStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *mockConversationStore) Sessions(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockConversationStore) Close() error { return nil }

// mockIndexer is a scripted driving.Indexer.
type mockIndexer struct {
	ready       bool
	err         error
	invalidated int
	chunks      []domain.Chunk
}

func (m *mockIndexer) EnsureReady(_ context.Context) (bool, error) { return m.ready, m.err }

func (m *mockIndexer) Invalidate() { m.invalidated++ }

func (m *mockIndexer) Search(_ context.Context, _ string, k int) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.chunks) > k {
		return m.chunks[:k], nil
	}
	return m.chunks, nil
}

func (m *mockIndexer) Stats() driving.IndexStats { return driving.IndexStats{Ready: m.ready} }

// mockAnswerer returns a canned model reply.
type mockAnswerer struct {
	reply        string
	err          error
	conversation string
	calls        int
}

func (m *mockAnswerer) Answer(_ context.Context, _ string, conversation string) (string, error) {
	m.calls++
	m.conversation = conversation
	return m.reply, m.err
}

// mockSummaryRenderer records rendered summaries.
type mockSummaryRenderer struct {
	content string
	source  string
	err     error
}

func (m *mockSummaryRenderer) Render(content, sourceFilename string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.content = content
	m.source = sourceFilename
	return "summary_" + sourceFilename, nil
}
