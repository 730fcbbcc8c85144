package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Chunk metadata keys.
const (
	// MetaSourceFilename is the uploaded filename a chunk was extracted from.
	MetaSourceFilename = "source_filename"

	// MetaFilePath is the on-disk path of the source document.
	MetaFilePath = "file_path"

	// MetaPage is the 1-based page number the chunk text came from.
	MetaPage = "page"
)

// Document is an uploaded PDF held in the file store.
// Documents are immutable once stored.
type Document struct {
	// Filename is the sanitised base name, unique within its folder.
	Filename string

	// Path is the on-disk location.
	Path string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the last modification time reported by the file store.
	ModTime time.Time
}

// FormatSize returns the size in human readable form (e.g. "1.5 KB").
func (d Document) FormatSize() string {
	return FormatSize(d.Size)
}

// FormatSize renders a byte count as B, KB, MB or GB rounded to two decimals.
func FormatSize(size int64) string {
	if size <= 0 {
		return "0B"
	}

	names := []string{"B", "KB", "MB", "GB"}
	i := 0
	for i < len(names)-1 && float64(size) >= math.Pow(1024, float64(i+1)) {
		i++
	}

	value := float64(size) / math.Pow(1024, float64(i))
	s := fmt.Sprintf("%.2f", value)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " " + names[i]
}

// Page is one unit of text extracted from a Document.
type Page struct {
	// Filename is the source document's filename.
	Filename string

	// Path is the source document's on-disk path.
	Path string

	// Number is the 1-based page number.
	Number int

	// Content is the extracted text.
	Content string
}

// Metadata returns the source metadata every chunk of this page carries.
func (p *Page) Metadata() map[string]any {
	return map[string]any{
		MetaSourceFilename: p.Filename,
		MetaFilePath:       p.Path,
		MetaPage:           p.Number,
	}
}

// Chunk is a bounded span of extracted text plus source metadata.
// Chunks are owned by the index and regenerated on every rebuild.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the source page.
	Position int

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata carries MetaSourceFilename, MetaFilePath and MetaPage.
	Metadata map[string]any
}

// SourceFilename returns the filename the chunk was extracted from.
func (c Chunk) SourceFilename() string {
	if c.Metadata == nil {
		return ""
	}
	name, _ := c.Metadata[MetaSourceFilename].(string)
	return name
}

// Folder names a file store directory.
type Folder string

// Known folders.
const (
	// FolderUploads holds original uploaded PDFs.
	FolderUploads Folder = "uploads"

	// FolderDownloads holds generated summary PDFs.
	FolderDownloads Folder = "downloads"
)

// IsValid returns true if the folder is recognised.
func (f Folder) IsValid() bool {
	return f == FolderUploads || f == FolderDownloads
}

// String returns the string representation.
func (f Folder) String() string {
	return string(f)
}
