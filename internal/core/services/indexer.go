package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.Indexer = (*IndexService)(nil)

// embedBatchSize bounds the number of texts sent per embedding request.
const embedBatchSize = 64

// generation is one fully built index over the uploads folder.
type generation struct {
	index     driven.VectorIndex
	chunks    map[string]domain.Chunk
	documents []string
	skipped   []string

	// refs counts in-flight searches. A retired generation is closed once
	// the last of them releases it.
	refMu   sync.Mutex
	refs    int
	retired bool
}

func (g *generation) acquire() {
	g.refMu.Lock()
	g.refs++
	g.refMu.Unlock()
}

func (g *generation) release() {
	g.refMu.Lock()
	g.refs--
	done := g.retired && g.refs == 0
	g.refMu.Unlock()
	if done {
		closeGeneration(g)
	}
}

// retire marks the generation as replaced and closes it immediately when
// no search holds it.
func (g *generation) retire() {
	g.refMu.Lock()
	g.retired = true
	done := g.refs == 0
	g.refMu.Unlock()
	if done {
		closeGeneration(g)
	}
}

// IndexService lazily builds the similarity index over all uploaded PDFs.
//
// A build fills a fresh generation off to the side and swaps it in when
// complete, so Search never observes a partial index. Concurrent
// EnsureReady calls share a single build.
type IndexService struct {
	files     driven.FileStore
	extractor driven.TextExtractor
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	vectors   driven.VectorIndexFactory

	buildMu sync.Mutex

	mu      sync.RWMutex
	current *generation
	epoch   uint64
}

// NewIndexService creates a new index service.
func NewIndexService(
	files driven.FileStore,
	extractor driven.TextExtractor,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	vectors driven.VectorIndexFactory,
) *IndexService {
	return &IndexService{
		files:     files,
		extractor: extractor,
		pipeline:  pipeline,
		embedder:  embedder,
		vectors:   vectors,
	}
}

// EnsureReady builds the index if it is absent.
// It returns false when there are no documents or none yielded a chunk.
func (s *IndexService) EnsureReady(ctx context.Context) (bool, error) {
	if s.ready() {
		return true, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	for {
		s.mu.RLock()
		if s.current != nil {
			s.mu.RUnlock()
			return true, nil
		}
		epoch := s.epoch
		s.mu.RUnlock()

		gen, err := s.build(ctx)
		if err != nil {
			return false, err
		}
		if gen == nil {
			return false, nil
		}

		s.mu.Lock()
		if s.epoch != epoch {
			// the document set changed while building
			s.mu.Unlock()
			closeGeneration(gen)
			logger.Debug("index invalidated during build, rebuilding")
			continue
		}
		s.current = gen
		s.mu.Unlock()

		logger.Info("index built: %d documents, %d chunks", len(gen.documents), len(gen.chunks))
		return true, nil
	}
}

// Invalidate drops the current index so the next EnsureReady rebuilds it.
func (s *IndexService) Invalidate() {
	s.mu.Lock()
	old := s.current
	s.current = nil
	s.epoch++
	s.mu.Unlock()

	if old != nil {
		logger.Debug("index invalidated")
		old.retire()
	}
}

// Search embeds the query and returns the k most similar chunks.
// Returns domain.ErrNoDocuments when no index is built.
func (s *IndexService) Search(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// The vector search may be a network round trip, so it runs outside
	// s.mu and Invalidate never waits on it.
	s.mu.RLock()
	gen := s.current
	if gen != nil {
		gen.acquire()
	}
	s.mu.RUnlock()

	if gen == nil {
		return nil, domain.ErrNoDocuments
	}
	defer gen.release()

	hits, err := gen.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(hits))
	for _, hit := range hits {
		if chunk, ok := gen.chunks[hit.ChunkID]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// Stats describes the current index generation.
func (s *IndexService) Stats() driving.IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return driving.IndexStats{}
	}
	return driving.IndexStats{
		Ready:     true,
		Documents: len(s.current.documents),
		Chunks:    len(s.current.chunks),
		Skipped:   append([]string(nil), s.current.skipped...),
	}
}

// Sources returns the filenames represented in the current index.
func (s *IndexService) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	return append([]string(nil), s.current.documents...)
}

func (s *IndexService) ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// build creates a generation from every document in the uploads folder.
// It returns nil without error when nothing could be indexed.
func (s *IndexService) build(ctx context.Context) (*generation, error) {
	logger.Section("Index Build")

	docs, err := s.files.List(domain.FolderUploads)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	if len(docs) == 0 {
		logger.Debug("no documents to index")
		return nil, nil
	}

	var chunks []domain.Chunk
	var documents, skipped []string

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		docChunks, err := s.chunkDocument(ctx, doc)
		if err != nil {
			logger.Warn("skipping %s: %v", doc.Filename, err)
			skipped = append(skipped, doc.Filename)
			continue
		}
		if len(docChunks) == 0 {
			continue
		}

		logger.Debug("%s: %d chunks", doc.Filename, len(docChunks))
		documents = append(documents, doc.Filename)
		chunks = append(chunks, docChunks...)
	}

	if len(chunks) == 0 {
		logger.Debug("no chunks produced from %d documents", len(docs))
		return nil, nil
	}

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	dims := s.embedder.Dimensions()
	if dims <= 0 {
		dims = len(vectors[0])
	}

	index, err := s.vectors.NewIndex(ctx, dims)
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}

	gen := &generation{
		index:     index,
		chunks:    make(map[string]domain.Chunk, len(chunks)),
		documents: documents,
		skipped:   skipped,
	}
	for i, chunk := range chunks {
		if err := index.Add(ctx, chunk.ID, vectors[i]); err != nil {
			closeGeneration(gen)
			return nil, fmt.Errorf("add chunk %s: %w", chunk.ID, err)
		}
		gen.chunks[chunk.ID] = chunk
	}

	sort.Strings(gen.documents)
	return gen, nil
}

// chunkDocument extracts and splits one document.
func (s *IndexService) chunkDocument(ctx context.Context, doc domain.Document) ([]domain.Chunk, error) {
	pages, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for i := range pages {
		pageChunks, err := s.pipeline.Process(ctx, &pages[i])
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pages[i].Number, err)
		}
		chunks = append(chunks, pageChunks...)
	}
	return chunks, nil
}

// embed computes one vector per chunk, in batches.
func (s *IndexService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embed chunks: got %d vectors for %d texts: %w",
				len(batch), len(texts), domain.ErrEmbeddingUnavailable)
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func closeGeneration(gen *generation) {
	if err := gen.index.Close(); err != nil {
		logger.Warn("close index generation: %v", err)
	}
}
