package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the uploaded PDFs"`
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation to continue (default mcp)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Response  string           `json:"response"`
	Downloads domain.Downloads `json:"downloads"`
	SessionID string           `json:"session_id"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Folder string `json:"folder,omitempty" jsonschema:"uploads or downloads (default uploads)"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one stored PDF.
type DocumentOutput struct {
	Filename string `json:"filename"`
	Size     string `json:"size"`
	Modified string `json:"modified"`
}

// ClearMemoryInput is the input schema for the clear_memory tool.
type ClearMemoryInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"conversation to forget (default mcp)"`
}

// ClearMemoryOutput is the output schema for the clear_memory tool.
type ClearMemoryOutput struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the uploaded PDF documents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List uploaded PDFs or generated summaries",
	}, s.handleListDocuments)

	if s.ports.Memory != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "clear_memory",
			Description: "Forget the conversation history of a session",
		}, s.handleClearMemory)
	}
}

func sessionOrDefault(id string) string {
	if id == "" {
		return DefaultSessionID
	}
	return id
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Ask.Ask(ctx, sessionOrDefault(input.SessionID), input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Response:  result.Response,
		Downloads: result.Downloads,
		SessionID: result.SessionID,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	folder := domain.FolderUploads
	if input.Folder != "" {
		folder = domain.Folder(input.Folder)
	}
	if !folder.IsValid() {
		return nil, ListDocumentsOutput{}, fmt.Errorf("%w: %q", domain.ErrInvalidFolder, input.Folder)
	}

	docs, err := s.ports.Documents.List(ctx, folder)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	return nil, toListOutput(docs), nil
}

// handleClearMemory handles the clear_memory tool invocation.
func (s *Server) handleClearMemory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClearMemoryInput,
) (*mcp.CallToolResult, ClearMemoryOutput, error) {
	id := sessionOrDefault(input.SessionID)
	if err := s.ports.Memory.Clear(ctx, id); err != nil {
		return nil, ClearMemoryOutput{}, err
	}
	return nil, ClearMemoryOutput{SessionID: id, Cleared: true}, nil
}

func toListOutput(docs []domain.Document) ListDocumentsOutput {
	out := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i, d := range docs {
		out.Documents[i] = DocumentOutput{
			Filename: d.Filename,
			Size:     d.FormatSize(),
			Modified: d.ModTime.UTC().Format("2006-01-02 15:04:05"),
		}
	}
	return out
}
