package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages uploaded PDFs and generated summaries.
// Any change to the uploads folder invalidates the index.
type DocumentService struct {
	files   driven.FileStore
	indexer driving.Indexer
}

// NewDocumentService creates a new document service.
func NewDocumentService(files driven.FileStore, indexer driving.Indexer) *DocumentService {
	return &DocumentService{
		files:   files,
		indexer: indexer,
	}
}

// List returns the files in a folder sorted by filename.
func (s *DocumentService) List(_ context.Context, folder domain.Folder) ([]domain.Document, error) {
	if !folder.IsValid() {
		return nil, domain.ErrInvalidFolder
	}
	return s.files.List(folder)
}

// Upload stores a PDF and invalidates the index.
func (s *DocumentService) Upload(_ context.Context, filename string, r io.Reader) (domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return domain.Document{}, fmt.Errorf("no file selected: %w", domain.ErrInvalidInput)
	}
	if !IsPDF(filename) {
		return domain.Document{}, fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFileType)
	}

	doc, err := s.files.Save(domain.FolderUploads, filename, r)
	if err != nil {
		return domain.Document{}, fmt.Errorf("save %s: %w", filename, err)
	}
	// List only returns PDFs, so a stored name without the extension would
	// never be indexed.
	if !IsPDF(doc.Filename) {
		_ = s.files.Delete(domain.FolderUploads, doc.Filename)
		return domain.Document{}, fmt.Errorf("%s stored as %q: %w", filename, doc.Filename, domain.ErrInvalidInput)
	}

	logger.Info("uploaded %s (%s)", doc.Filename, doc.FormatSize())
	s.indexer.Invalidate()
	return doc, nil
}

// Delete removes a file. Deleting from uploads invalidates the index.
func (s *DocumentService) Delete(_ context.Context, folder domain.Folder, filename string) error {
	if !folder.IsValid() {
		return domain.ErrInvalidFolder
	}
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("filename: %w", domain.ErrInvalidInput)
	}

	if err := s.files.Delete(folder, filename); err != nil {
		return err
	}

	logger.Info("deleted %s/%s", folder, filename)
	if folder == domain.FolderUploads {
		s.indexer.Invalidate()
	}
	return nil
}

// Open returns a reader for a stored file.
func (s *DocumentService) Open(_ context.Context, folder domain.Folder, filename string) (io.ReadCloser, domain.Document, error) {
	if !folder.IsValid() {
		return nil, domain.Document{}, domain.ErrInvalidFolder
	}
	return s.files.Open(folder, filename)
}

// IsPDF reports whether filename has a .pdf extension, ignoring case.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
