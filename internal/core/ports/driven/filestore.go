package driven

import (
	"io"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// FileStore holds uploaded PDFs and generated summaries on disk.
type FileStore interface {
	// List returns the PDFs in a folder sorted by filename.
	// A missing folder yields an empty list.
	List(folder domain.Folder) ([]domain.Document, error)

	// Save writes r under a sanitised version of filename and returns
	// the stored document. An existing file with that name is replaced.
	Save(folder domain.Folder, filename string, r io.Reader) (domain.Document, error)

	// Open returns a reader for a stored file.
	// Returns domain.ErrNotFound if it does not exist.
	Open(folder domain.Folder, filename string) (io.ReadCloser, domain.Document, error)

	// Delete removes a stored file.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(folder domain.Folder, filename string) error

	// Exists reports whether a file is stored.
	Exists(folder domain.Folder, filename string) bool

	// Path returns the on-disk path a file would have.
	Path(folder domain.Folder, filename string) (string, error)
}
