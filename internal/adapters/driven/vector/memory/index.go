// Package memory provides an in-process vector index using brute-force
// cosine similarity. Suitable for the document counts a single PDF-IQ
// instance handles; vectors are lost on restart.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

// Ensure the adapters implement the interfaces.
var (
	_ driven.VectorIndex        = (*Index)(nil)
	_ driven.VectorIndexFactory = (*Factory)(nil)
)

// Factory creates in-process index generations.
type Factory struct{}

// NewFactory returns a Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewIndex returns an empty index for vectors of the given size.
func (f *Factory) NewIndex(_ context.Context, dimensions int) (driven.VectorIndex, error) {
	return NewIndex(dimensions)
}

// Index holds unit-normalised vectors keyed by chunk ID.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	vectors    map[string][]float32
	closed     bool
}

// NewIndex creates an empty index.
func NewIndex(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive, got %d", dimensions)
	}
	return &Index{
		dimensions: dimensions,
		vectors:    make(map[string][]float32),
	}, nil
}

// Add inserts or replaces the vector for chunkID.
func (i *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	if len(embedding) != i.dimensions {
		return fmt.Errorf("vector for %s has %d dimensions, index expects %d", chunkID, len(embedding), i.dimensions)
	}

	normalised, ok := normalise(embedding)
	if !ok {
		return fmt.Errorf("vector for %s has zero magnitude", chunkID)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return errClosed
	}
	i.vectors[chunkID] = normalised
	return nil
}

// Delete removes a vector. Unknown IDs are ignored.
func (i *Index) Delete(_ context.Context, chunkID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.vectors, chunkID)
	return nil
}

// Search returns up to k hits ordered by descending similarity.
// Ties are broken by chunk ID so results are stable.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(query) != i.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d", len(query), i.dimensions)
	}

	q, ok := normalise(query)
	if !ok {
		return nil, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.closed {
		return nil, errClosed
	}

	hits := make([]driven.VectorHit, 0, len(i.vectors))
	for id, v := range i.vectors {
		hits = append(hits, driven.VectorHit{ChunkID: id, Similarity: dot(q, v)})
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of vectors held.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// Close discards all vectors. Further use returns an error.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	i.vectors = nil
	return nil
}

var errClosed = errors.New("vector index is closed")

func normalise(v []float32) ([]float32, bool) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return nil, false
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for j, x := range v {
		out[j] = float32(float64(x) / norm)
	}
	return out, true
}

func dot(a, b []float32) float64 {
	var s float64
	for j := range a {
		s += float64(a[j]) * float64(b[j])
	}
	return s
}
