package driven

import (
	"context"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// PostProcessor turns extracted page text into chunks.
// PostProcessors are chained in a pipeline (chunking, trimming).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a page and the chunks produced so far.
	// A creating processor (chunker) receives nil and returns new chunks.
	Process(ctx context.Context, page *domain.Page, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the page through all processors in order.
	Process(ctx context.Context, page *domain.Page) ([]domain.Chunk, error)
}
