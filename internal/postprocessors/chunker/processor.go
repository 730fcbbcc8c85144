// Package chunker provides a size-bounded text chunking processor.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// separators are tried in order when choosing where a chunk ends.
var separators = []string{"\n\n", "\n", " "}

// Processor splits page text into chunks of at most chunkSize characters.
// It prefers to cut at a paragraph break, then a line break, then a space,
// as long as the cut falls in the second half of the window.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the page content into chunks.
// Input chunks are ignored; this processor creates new chunks from page content.
func (p *Processor) Process(_ context.Context, page *domain.Page, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(page.Content) == "" {
		return nil, nil
	}

	// Work in runes so multi-byte characters are never split.
	runes := []rune(page.Content)
	n := len(runes)

	chunks := make([]domain.Chunk, 0, n/(p.chunkSize-p.overlap)+1)
	position := 0
	start := 0

	for start < n {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else {
			end = p.breakPoint(runes, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:       uuid.New().String(),
			Content:  string(runes[start:end]),
			Position: position,
			Metadata: page.Metadata(),
		})
		position++

		if end == n {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// breakPoint returns the preferred end of the window [start, end).
// The cut lands just after the last separator found in the second half of
// the window, or at end when there is none.
func (p *Processor) breakPoint(runes []rune, start, end int) int {
	floor := start + (end-start)/2
	window := string(runes[floor:end])

	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := floor + len([]rune(window[:idx])) + len([]rune(sep))
		if cut > floor && cut <= end {
			return cut
		}
	}

	return end
}
