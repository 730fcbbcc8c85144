package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

const uriScheme = "pdfiq://"

// registerResources registers the document listings.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Uploaded PDF documents",
		MIMEType:    "application/json",
	}, s.folderResource(domain.FolderUploads))

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "summaries",
		Name:        "summaries",
		Description: "Generated summary PDFs",
		MIMEType:    "application/json",
	}, s.folderResource(domain.FolderDownloads))
}

// folderResource returns a handler listing one folder as JSON.
func (s *Server) folderResource(folder domain.Folder) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		docs, err := s.ports.Documents.List(ctx, folder)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", folder, err)
		}

		data, err := json.MarshalIndent(toListOutput(docs).Documents, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling %s: %w", folder, err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	}
}
