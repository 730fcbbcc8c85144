// Package tui provides an interactive terminal chat for PDF-IQ.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Ask answers questions.
	Ask driving.AskService

	// Documents lists uploaded PDFs for the status bar. Optional.
	Documents driving.DocumentService

	// Memory clears and reports the conversation. Optional.
	Memory driving.MemoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
