package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// DocumentService manages uploaded PDFs and generated summaries.
type DocumentService interface {
	// List returns the files in a folder sorted by filename.
	List(ctx context.Context, folder domain.Folder) ([]domain.Document, error)

	// Upload stores a PDF in the uploads folder and invalidates the index.
	// Returns domain.ErrInvalidInput for an empty filename and
	// domain.ErrUnsupportedFileType for anything but a .pdf.
	Upload(ctx context.Context, filename string, r io.Reader) (domain.Document, error)

	// Delete removes a file. Deleting from uploads invalidates the index.
	Delete(ctx context.Context, folder domain.Folder, filename string) error

	// Open returns a reader for a stored file, or domain.ErrNotFound.
	Open(ctx context.Context, folder domain.Folder, filename string) (io.ReadCloser, domain.Document, error)
}
