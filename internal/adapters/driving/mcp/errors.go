// Package mcp provides an MCP (Model Context Protocol) server adapter for PDF-IQ.
// It lets AI assistants ask questions about the uploaded PDFs and list them.
package mcp

import "errors"

// Errors returned when a required port is missing.
var (
	ErrMissingAskService      = errors.New("mcp: ask service is required")
	ErrMissingDocumentService = errors.New("mcp: document service is required")
)
