// Package filesystem stores uploaded PDFs and generated summaries on local disk.
package filesystem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore keeps each folder in its own directory.
type FileStore struct {
	dirs map[domain.Folder]string
}

// NewFileStore creates a store over the given upload and download
// directories. They are created on first write.
func NewFileStore(uploadDir, downloadDir string) *FileStore {
	return &FileStore{
		dirs: map[domain.Folder]string{
			domain.FolderUploads:   uploadDir,
			domain.FolderDownloads: downloadDir,
		},
	}
}

// Dir returns the directory backing a folder.
func (s *FileStore) Dir(folder domain.Folder) (string, error) {
	if !folder.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFolder, folder)
	}
	return s.dirs[folder], nil
}

// List returns the PDFs in a folder sorted by filename.
func (s *FileStore) List(folder domain.Folder) ([]domain.Document, error) {
	dir, err := s.Dir(folder)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", folder, err)
	}

	docs := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsPDF(name) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		docs = append(docs, domain.Document{
			Filename: name,
			Path:     filepath.Join(dir, name),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Filename < docs[j].Filename
	})
	return docs, nil
}

// storedName sanitises filename. A PDF whose name sanitises down to nothing
// but its extension is stored under a generated name so it stays a PDF.
func storedName(filename string) string {
	name := SecureFilename(filename)
	if !IsPDF(filename) {
		return name
	}
	stem := strings.TrimSuffix(strings.ToLower(name), ".pdf")
	if IsPDF(name) && strings.Trim(stem, "._-") != "" {
		return name
	}
	return uuid.NewString() + ".pdf"
}

// Save writes r under the sanitised filename, replacing any existing file.
func (s *FileStore) Save(folder domain.Folder, filename string, r io.Reader) (domain.Document, error) {
	dir, err := s.Dir(folder)
	if err != nil {
		return domain.Document{}, err
	}

	name := storedName(filename)
	if name == "" {
		return domain.Document{}, fmt.Errorf("%w: filename %q has no usable characters", domain.ErrInvalidInput, filename)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.Document{}, fmt.Errorf("create %s: %w", folder, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return domain.Document{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return domain.Document{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return domain.Document{}, fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return domain.Document{}, fmt.Errorf("chmod %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return domain.Document{}, fmt.Errorf("store %s: %w", name, err)
	}

	doc := domain.Document{Filename: name, Path: path, Size: size}
	if info, err := os.Stat(path); err == nil {
		doc.ModTime = info.ModTime()
	}
	return doc, nil
}

// Open returns a reader for a stored file.
func (s *FileStore) Open(folder domain.Folder, filename string) (io.ReadCloser, domain.Document, error) {
	path, err := s.Path(folder, filename)
	if err != nil {
		return nil, domain.Document{}, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.Document{}, fmt.Errorf("%s/%s: %w", folder, filename, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.Document{}, fmt.Errorf("open %s: %w", filename, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, domain.Document{}, fmt.Errorf("stat %s: %w", filename, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, domain.Document{}, fmt.Errorf("%s/%s: %w", folder, filename, domain.ErrNotFound)
	}

	return f, domain.Document{
		Filename: filename,
		Path:     path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}, nil
}

// Delete removes a stored file.
func (s *FileStore) Delete(folder domain.Folder, filename string) error {
	path, err := s.Path(folder, filename)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s/%s: %w", folder, filename, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", filename, err)
	}
	return nil
}

// Exists reports whether a regular file is stored under filename.
func (s *FileStore) Exists(folder domain.Folder, filename string) bool {
	path, err := s.Path(folder, filename)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Path returns the on-disk path for filename. Names that would escape
// the folder are rejected.
func (s *FileStore) Path(folder domain.Folder, filename string) (string, error) {
	dir, err := s.Dir(folder)
	if err != nil {
		return "", err
	}
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || strings.ContainsRune(filename, 0) {
		return "", fmt.Errorf("%w: filename %q", domain.ErrInvalidInput, filename)
	}
	return filepath.Join(dir, filename), nil
}

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// SecureFilename reduces name to a safe base name: directory parts are
// dropped, whitespace runs become "_", anything but ASCII letters, digits,
// '.', '_' and '-' is removed, and leading or trailing dots and
// underscores are stripped. The result may be empty.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}
