package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfiq/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

const sampleSummary = `# Overview
This report reviews **quarterly revenue** and the *main* cost drivers for report_q3_final.pdf.

KEY FINDINGS
- Revenue grew 12%
- Costs held flat
1.1 regional detail for the northern sites
1. opened two sites
2. closed one site

Closing remarks on the outlook for the next fiscal year and beyond.`

func TestTitle(t *testing.T) {
	assert.Equal(t, "Summary of annual report 2024", Title("annual_report_2024.pdf"))
	assert.Equal(t, "Summary of notes", Title("notes"))
}

func TestSummaryName(t *testing.T) {
	assert.Equal(t, "summary_report.pdf", SummaryName("report.pdf"))
}

func TestWrite_ProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "Summary of test", Format(sampleSummary))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestWrite_LongContentPaginates(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("- a bullet point that is long enough to wrap onto a second line of the page\n")
	}

	var short, long bytes.Buffer
	require.NoError(t, Write(&short, "Summary of short", Format("- one bullet")))
	require.NoError(t, Write(&long, "Summary of long", Format(b.String())))
	assert.Greater(t, long.Len(), short.Len())
}

func TestRenderer_Render(t *testing.T) {
	root := t.TempDir()
	r := NewRenderer(filesystem.NewFileStore(filepath.Join(root, "uploads"), filepath.Join(root, "downloads")))

	name, err := r.Render(sampleSummary, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "summary_report.pdf", name)

	data, err := os.ReadFile(filepath.Join(root, "downloads", name))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderer_RenderReplacesEarlierSummary(t *testing.T) {
	root := t.TempDir()
	r := NewRenderer(filesystem.NewFileStore(filepath.Join(root, "uploads"), filepath.Join(root, "downloads")))

	_, err := r.Render("first version", "report.pdf")
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(root, "downloads", "summary_report.pdf"))
	require.NoError(t, err)

	_, err = r.Render(sampleSummary, "report.pdf")
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(root, "downloads", "summary_report.pdf"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	entries, err := os.ReadDir(filepath.Join(root, "downloads"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRenderer_RequiresFilename(t *testing.T) {
	r := NewRenderer(filesystem.NewFileStore(t.TempDir(), t.TempDir()))

	_, err := r.Render("content", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
