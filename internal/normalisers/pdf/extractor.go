// Package pdf extracts per-page plain text from PDF files.
//
// The pure Go reader is tried first. When it cannot parse a file, or the file
// yields no text, the poppler pdftotext tool is used if it is installed.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// pdftotextBinary is the name of the fallback tool.
const pdftotextBinary = "pdftotext"

// formFeed separates pages in pdftotext output.
const formFeed = "\f"

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Extractor reads PDF text page by page.
type Extractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
	readFile func(path string) ([]string, error)
}

// New creates an extractor using the system pdftotext for fallback.
func New() *Extractor {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates an extractor with a custom fallback runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{
		runner:   runner,
		lookPath: exec.LookPath,
		readFile: readPages,
	}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(pdftotextBinary); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `pdftotext improves extraction for PDFs the built-in reader cannot parse.
Install poppler:
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}

// Extract returns the non-empty pages of doc in page order.
func (e *Extractor) Extract(ctx context.Context, doc domain.Document) ([]domain.Page, error) {
	if !strings.EqualFold(filepath.Ext(doc.Filename), ".pdf") {
		return nil, fmt.Errorf("%s: %w", doc.Filename, domain.ErrUnsupportedFileType)
	}

	texts, err := e.readFile(doc.Path)
	if err != nil || !hasText(texts) {
		if err != nil {
			logger.Debug("pdf reader failed for %s: %v", doc.Filename, err)
		}
		fallback, ferr := e.pdftotext(ctx, doc.Path)
		switch {
		case ferr == nil:
			texts = fallback
		case err != nil:
			return nil, fmt.Errorf("%s: %w: %v", doc.Filename, domain.ErrExtractionFailed, err)
		case !errors.Is(ferr, ErrPDFToolNotFound):
			logger.Debug("pdftotext failed for %s: %v", doc.Filename, ferr)
		}
	}

	pages := make([]domain.Page, 0, len(texts))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, domain.Page{
			Filename: doc.Filename,
			Path:     doc.Path,
			Number:   i + 1,
			Content:  text,
		})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%s: no extractable text: %w", doc.Filename, domain.ErrExtractionFailed)
	}
	return pages, nil
}

// pdftotext runs the fallback tool and splits its output into pages.
func (e *Extractor) pdftotext(ctx context.Context, path string) ([]string, error) {
	if _, err := e.lookPath(pdftotextBinary); err != nil {
		return nil, ErrPDFToolNotFound
	}

	out, err := e.runner.Run(ctx, pdftotextBinary, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	texts := strings.Split(string(out), formFeed)
	// pdftotext terminates the last page with a form feed
	if n := len(texts); n > 1 && strings.TrimSpace(texts[n-1]) == "" {
		texts = texts[:n-1]
	}
	return texts, nil
}

// readPages extracts the text of every page with the pure Go reader.
// Pages that cannot be decoded come back empty.
func readPages(path string) (texts []string, err error) {
	// the reader panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			texts, err = nil, fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	total := r.NumPage()
	texts = make([]string, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		texts[i-1] = text
	}
	return texts, nil
}

func hasText(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}
