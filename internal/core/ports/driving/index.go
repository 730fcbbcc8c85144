package driving

import (
	"context"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// Indexer owns the lazily built similarity index over all uploaded documents.
type Indexer interface {
	// EnsureReady builds the index if absent. It returns false when there
	// are no documents or no document yielded any chunk.
	EnsureReady(ctx context.Context) (bool, error)

	// Invalidate drops the current index so the next EnsureReady rebuilds it.
	Invalidate()

	// Search returns the k chunks most similar to the query.
	Search(ctx context.Context, query string, k int) ([]domain.Chunk, error)

	// Stats describes the current index generation.
	Stats() IndexStats
}

// IndexStats describes the current index generation.
type IndexStats struct {
	// Ready is true when a generation is built.
	Ready bool

	// Documents is the number of documents that yielded chunks.
	Documents int

	// Chunks is the number of indexed chunks.
	Chunks int

	// Skipped lists documents that could not be parsed.
	Skipped []string
}
