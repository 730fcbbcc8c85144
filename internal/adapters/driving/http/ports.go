package http

import (
	"errors"

	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
)

// Errors returned by Ports.Validate.
var (
	ErrMissingAskService      = errors.New("http: ask service is required")
	ErrMissingDocumentService = errors.New("http: document service is required")
	ErrMissingMemoryService   = errors.New("http: memory service is required")
)

// Ports aggregates the driving ports the web server needs.
type Ports struct {
	// Ask answers chat questions.
	Ask driving.AskService

	// Documents manages uploads and summaries.
	Documents driving.DocumentService

	// Memory clears and reports session memory.
	Memory driving.MemoryService

	// Indexer reports index state on the admin page. Optional.
	Indexer driving.Indexer
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Ask == nil:
		return ErrMissingAskService
	case p.Documents == nil:
		return ErrMissingDocumentService
	case p.Memory == nil:
		return ErrMissingMemoryService
	}
	return nil
}
