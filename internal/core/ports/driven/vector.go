package driven

import "context"

// VectorIndex is one generation of the similarity index.
// A generation is filled once by the indexer and then only queried.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search finds the k nearest neighbours to the query vector,
	// most similar first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of vectors held.
	Len() int

	// Close releases resources and discards the generation's vectors.
	Close() error
}

// VectorIndexFactory creates empty index generations.
type VectorIndexFactory interface {
	// NewIndex returns an empty index for vectors of the given size.
	NewIndex(ctx context.Context, dimensions int) (VectorIndex, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score.
	Similarity float64
}
