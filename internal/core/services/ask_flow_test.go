package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfiq/internal/adapters/driven/storage/filesystem"
	memstore "github.com/custodia-labs/pdfiq/internal/adapters/driven/storage/memory"
	memvector "github.com/custodia-labs/pdfiq/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/postprocessors"
	"github.com/custodia-labs/pdfiq/internal/postprocessors/chunker"
	"github.com/custodia-labs/pdfiq/internal/postprocessors/trim"
)

// plainTextExtractor treats each stored file as a single page of text.
type plainTextExtractor struct{}

func (plainTextExtractor) Extract(_ context.Context, doc domain.Document) ([]domain.Page, error) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return nil, err
	}
	return []domain.Page{{Filename: doc.Filename, Path: doc.Path, Number: 1, Content: string(data)}}, nil
}

type askFlow struct {
	docs *DocumentService
	ask  *AskService
	llm  *mockLLM
}

func newAskFlow(t *testing.T) *askFlow {
	t.Helper()

	dir := t.TempDir()
	files := filesystem.NewFileStore(filepath.Join(dir, "uploads"), filepath.Join(dir, "downloads"))
	pipeline := postprocessors.NewPipeline(chunker.New(), trim.New(1))
	indexer := NewIndexService(files, plainTextExtractor{}, pipeline, &mockEmbedder{}, memvector.NewFactory())
	llm := &mockLLM{}
	answerer := NewPipelineService(indexer, llm, files, &mockPromptStore{template: "Available files:\n%s\n"}, 4)
	memory := NewMemoryService(memstore.NewConversationStore(), 5)

	return &askFlow{
		docs: NewDocumentService(files, indexer),
		ask:  NewAskService(indexer, answerer, memory, files, &mockSummaryRenderer{}),
		llm:  llm,
	}
}

// retrieved returns the chunk section of the last prompt.
func (f *askFlow) retrieved(t *testing.T) string {
	t.Helper()
	_, after, found := strings.Cut(f.llm.prompt, contextHeader)
	require.True(t, found, "prompt has no context section")
	before, _, _ := strings.Cut(after, questionPrefix)
	return before
}

func TestAskFlow_UploadAskDeleteAsk(t *testing.T) {
	f := newAskFlow(t)
	ctx := context.Background()

	res, err := f.ask.Ask(ctx, "s1", "How long do refunds take?")
	require.NoError(t, err)
	assert.Equal(t, domain.MessageNoDocuments, res.Response)
	assert.Zero(t, f.llm.calls)

	_, err = f.docs.Upload(ctx, "policy.pdf", strings.NewReader("Refunds are processed within 30 days of purchase."))
	require.NoError(t, err)

	f.llm.reply = "DOWNLOAD_ORIGINAL: false\nDOWNLOAD_SUMMARY: false\nFILENAME: \nSUMMARY_CONTENT: \n" +
		"ANSWER: According to policy.pdf, refunds are processed within 30 days."
	res, err = f.ask.Ask(ctx, "s1", "How long do refunds take?")
	require.NoError(t, err)

	assert.Contains(t, res.Response, "policy.pdf")
	assert.True(t, res.Downloads.IsEmpty())
	assert.Equal(t, 1, f.llm.calls)
	assert.Contains(t, f.llm.prompt, "Available files:\n- policy.pdf\n")
	assert.Contains(t, f.retrieved(t), "Refunds are processed within 30 days of purchase.")
	assert.Contains(t, f.llm.prompt, questionPrefix+"How long do refunds take?")

	// replace the document set
	_, err = f.docs.Upload(ctx, "handbook.pdf", strings.NewReader("Shipping takes five business days."))
	require.NoError(t, err)
	require.NoError(t, f.docs.Delete(ctx, domain.FolderUploads, "policy.pdf"))

	f.llm.reply = "DOWNLOAD_ORIGINAL: true\nDOWNLOAD_SUMMARY: false\nFILENAME: handbook.pdf\nSUMMARY_CONTENT: \n" +
		"ANSWER: handbook.pdf says shipping takes five business days."
	res, err = f.ask.Ask(ctx, "s1", "How long does shipping take?")
	require.NoError(t, err)

	assert.Contains(t, f.llm.prompt, "Available files:\n- handbook.pdf\n")
	assert.NotContains(t, f.llm.prompt, "- policy.pdf")
	chunks := f.retrieved(t)
	assert.Contains(t, chunks, "Shipping takes five business days.")
	assert.NotContains(t, chunks, "Refunds")

	// the first exchange is carried as conversation context
	assert.Contains(t, f.llm.prompt, "User: How long do refunds take?")

	assert.Equal(t, DownloadOriginalRoute+"handbook.pdf", res.Downloads.Original)
	assert.Empty(t, res.Downloads.Summary)
	assert.Contains(t, res.Response, "handbook.pdf says shipping takes five business days.")
}

func TestAskFlow_NonASCIIUploadIsIndexed(t *testing.T) {
	f := newAskFlow(t)
	ctx := context.Background()

	doc, err := f.docs.Upload(ctx, "报告.pdf", strings.NewReader("Quarterly revenue grew by twelve percent."))
	require.NoError(t, err)

	f.llm.reply = "ANSWER: Revenue grew by twelve percent."
	res, err := f.ask.Ask(ctx, "s1", "How much did revenue grow?")
	require.NoError(t, err)

	assert.Equal(t, "Revenue grew by twelve percent.", res.Response)
	assert.Contains(t, f.llm.prompt, "- "+doc.Filename)
	assert.Contains(t, f.retrieved(t), "Quarterly revenue grew by twelve percent.")
}
