// Package trim provides a processor that tidies chunk boundaries.
package trim

import (
	"context"
	"strings"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// Processor trims surrounding whitespace from each chunk and drops chunks
// left with fewer than minLength characters. Positions are renumbered.
type Processor struct {
	minLength int
}

// New creates a trim processor. minLength below 1 is treated as 1.
func New(minLength int) *Processor {
	if minLength < 1 {
		minLength = 1
	}
	return &Processor{minLength: minLength}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "trim"
}

// Process trims and filters the incoming chunks.
func (p *Processor) Process(_ context.Context, _ *domain.Page, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := chunks[:0]
	for _, c := range chunks {
		c.Content = strings.TrimSpace(c.Content)
		if len([]rune(c.Content)) < p.minLength {
			continue
		}
		c.Position = len(out)
		out = append(out, c)
	}
	return out, nil
}
