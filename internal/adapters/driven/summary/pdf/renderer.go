package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.SummaryRenderer = (*Renderer)(nil)

// SummaryPrefix starts every generated summary filename.
const SummaryPrefix = "summary_"

// Page geometry in points.
const (
	sideMargin   = 72.0
	topMargin    = 72.0
	bottomMargin = 18.0
	listIndent   = 20.0
	bulletIndent = 10.0
	lineFactor   = 1.2
	fontFamily   = "Helvetica"
)

type rgb struct{ r, g, b int }

var (
	purple    = rgb{128, 0, 128}
	darkGreen = rgb{0, 100, 0}
	black     = rgb{0, 0, 0}
)

// style is the typography of one block kind.
type style struct {
	size        float64
	bold        bool
	color       rgb
	spaceBefore float64
	spaceAfter  float64
}

var (
	titleStyle      = style{size: 18, bold: true, color: purple, spaceAfter: 30}
	headingStyle    = style{size: 14, bold: true, color: purple, spaceBefore: 20, spaceAfter: 12}
	subheadingStyle = style{size: 12, bold: true, color: darkGreen, spaceBefore: 15, spaceAfter: 8}
	bodyStyle       = style{size: 11, color: black, spaceBefore: 6, spaceAfter: 6}
	listStyle       = style{size: 11, color: black, spaceBefore: 3, spaceAfter: 3}
	breakSpace      = 6.0
	titleGap        = 20.0
)

// Renderer lays out summaries on US Letter pages and stores them in the
// downloads folder.
type Renderer struct {
	files driven.FileStore
}

// NewRenderer creates a renderer writing through files.
func NewRenderer(files driven.FileStore) *Renderer {
	return &Renderer{files: files}
}

// SummaryName returns the downloads filename for a source document.
func SummaryName(sourceFilename string) string {
	return SummaryPrefix + sourceFilename
}

// Title returns the heading printed at the top of a summary.
func Title(sourceFilename string) string {
	name := strings.ReplaceAll(sourceFilename, "_", " ")
	name = strings.ReplaceAll(name, ".pdf", "")
	return "Summary of " + name
}

// Render writes downloads/summary_<sourceFilename>, replacing any
// earlier summary of the same source, and returns the stored filename.
func (r *Renderer) Render(content, sourceFilename string) (string, error) {
	if strings.TrimSpace(sourceFilename) == "" {
		return "", fmt.Errorf("%w: summary needs a source filename", domain.ErrInvalidInput)
	}

	var buf bytes.Buffer
	if err := Write(&buf, Title(sourceFilename), Format(content)); err != nil {
		return "", err
	}

	doc, err := r.files.Save(domain.FolderDownloads, SummaryName(sourceFilename), &buf)
	if err != nil {
		return "", fmt.Errorf("store summary: %w", err)
	}
	return doc.Filename, nil
}

// Write lays out the title and blocks as a PDF document on w.
func Write(w io.Writer, title string, blocks []Block) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(sideMargin, topMargin, sideMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetTitle(title, true)
	pdf.AddPage()

	l := &layout{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	l.apply(titleStyle)
	pdf.MultiCell(0, l.lineHeight(titleStyle), l.tr(title), "", "C", false)
	pdf.Ln(titleStyle.spaceAfter + titleGap)

	for _, b := range blocks {
		l.block(b)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render summary pdf: %w", err)
	}
	return nil
}

type layout struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (l *layout) lineHeight(s style) float64 {
	return s.size * lineFactor
}

func (l *layout) apply(s style) {
	fontStyle := ""
	if s.bold {
		fontStyle = "B"
	}
	l.pdf.SetFont(fontFamily, fontStyle, s.size)
	l.pdf.SetTextColor(s.color.r, s.color.g, s.color.b)
}

func (l *layout) block(b Block) {
	switch b.Kind {
	case KindBreak:
		l.pdf.Ln(breakSpace)

	case KindHeading:
		l.heading(headingStyle, b.Text)

	case KindSubheading:
		l.heading(subheadingStyle, b.Text)

	case KindBullet:
		l.listItem(BulletGlyph, b.Text)

	case KindNumbered:
		l.listItem(fmt.Sprintf("%d.", b.Number), b.Text)

	default:
		l.pdf.Ln(bodyStyle.spaceBefore)
		l.apply(bodyStyle)
		l.spans(bodyStyle, FormatInline(b.Text), "J")
		l.pdf.Ln(bodyStyle.spaceAfter)
	}
}

func (l *layout) heading(s style, text string) {
	l.pdf.Ln(s.spaceBefore)
	l.apply(s)
	l.pdf.MultiCell(0, l.lineHeight(s), l.tr(text), "", "L", false)
	l.pdf.Ln(s.spaceAfter)
}

// listItem prints marker in the bullet column and wraps text at the
// list indent.
func (l *layout) listItem(marker, text string) {
	left, _, _, _ := l.pdf.GetMargins()
	lh := l.lineHeight(listStyle)

	l.pdf.Ln(listStyle.spaceBefore)
	l.apply(listStyle)
	l.pdf.SetX(left + bulletIndent)
	l.pdf.CellFormat(listIndent-bulletIndent, lh, l.tr(marker), "", 0, "L", false, 0, "")

	l.pdf.SetLeftMargin(left + listIndent)
	l.pdf.SetX(left + listIndent)
	l.spans(listStyle, FormatInline(text), "L")
	l.pdf.SetLeftMargin(left)

	l.pdf.Ln(listStyle.spaceAfter)
}

// spans writes styled runs. Text without emphasis goes through
// MultiCell so it can be aligned; mixed emphasis flows with Write.
func (l *layout) spans(s style, spans []Span, align string) {
	lh := l.lineHeight(s)

	if plainOnly(spans) {
		l.pdf.MultiCell(0, lh, l.tr(PlainText(spans)), "", align, false)
		return
	}

	for _, span := range spans {
		fontStyle := ""
		if span.Bold || s.bold {
			fontStyle += "B"
		}
		if span.Italic {
			fontStyle += "I"
		}
		l.pdf.SetFont(fontFamily, fontStyle, s.size)
		l.pdf.Write(lh, l.tr(span.Text))
	}
	l.pdf.Ln(lh)
	l.apply(s)
}

func plainOnly(spans []Span) bool {
	for _, s := range spans {
		if s.Bold || s.Italic {
			return false
		}
	}
	return true
}
