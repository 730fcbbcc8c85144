package mcp

import (
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Ask answers questions against the uploaded documents.
	Ask driving.AskService

	// Documents lists uploaded PDFs and summaries.
	Documents driving.DocumentService

	// Memory clears conversations. Optional.
	Memory driving.MemoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
