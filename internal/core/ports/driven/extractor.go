package driven

import (
	"context"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// TextExtractor reads the text of a stored document.
type TextExtractor interface {
	// Extract returns one Page per non-empty page of the document.
	// Returns domain.ErrExtractionFailed when the file cannot be parsed.
	Extract(ctx context.Context, doc domain.Document) ([]domain.Page, error)
}
