package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

type askFixture struct {
	indexer  *mockIndexer
	answerer *mockAnswerer
	store    *mockConversationStore
	memory   *MemoryService
	files    *mockFileStore
	summary  *mockSummaryRenderer
	service  *AskService
}

func newAskFixture(reply string, uploads ...string) *askFixture {
	f := &askFixture{
		indexer:  &mockIndexer{ready: true},
		answerer: &mockAnswerer{reply: reply},
		store:    newMockConversationStore(),
		files:    newMockFileStore(uploads...),
		summary:  &mockSummaryRenderer{},
	}
	f.memory = NewMemoryService(f.store, 20)
	f.service = NewAskService(f.indexer, f.answerer, f.memory, f.files, f.summary)
	return f
}

func (f *askFixture) turns(t *testing.T, id string) []domain.Turn {
	t.Helper()
	turns, err := f.store.Turns(context.Background(), id)
	require.NoError(t, err)
	return turns
}

func TestAskService_EmptyQuestion(t *testing.T) {
	f := newAskFixture("ANSWER: x")

	result, err := f.service.Ask(context.Background(), "s1", "   ")

	require.NoError(t, err)
	assert.Equal(t, domain.MessageEmptyQuestion, result.Response)
	assert.Equal(t, "s1", result.SessionID)
	assert.Zero(t, f.answerer.calls)
	assert.Empty(t, f.turns(t, "s1"))
}

func TestAskService_MissingSession(t *testing.T) {
	f := newAskFixture("ANSWER: x")

	_, err := f.service.Ask(context.Background(), "", "q")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskService_NoDocuments(t *testing.T) {
	f := newAskFixture("ANSWER: x")
	f.indexer.ready = false

	result, err := f.service.Ask(context.Background(), "s1", "How long do refunds take?")

	require.NoError(t, err)
	assert.Equal(t, domain.MessageNoDocuments, result.Response)
	assert.True(t, result.Downloads.IsEmpty())
	assert.Zero(t, f.answerer.calls)
}

func TestAskService_PlainAnswer(t *testing.T) {
	reply := "DOWNLOAD_ORIGINAL: false\nDOWNLOAD_SUMMARY: false\nFILENAME:\nSUMMARY_CONTENT:\n\nANSWER: Refunds are processed within 30 days (policy.pdf)."
	f := newAskFixture(reply, "policy.pdf")

	result, err := f.service.Ask(context.Background(), "s1", "How long do refunds take?")

	require.NoError(t, err)
	assert.Equal(t, "Refunds are processed within 30 days (policy.pdf).", result.Response)
	assert.True(t, result.Downloads.IsEmpty())
	assert.False(t, result.Operations.Requested())

	turns := f.turns(t, "s1")
	require.Len(t, turns, 1)
	assert.Equal(t, "How long do refunds take?", turns[0].Question)
	assert.Equal(t, "Refunds are processed within 30 days (policy.pdf).", turns[0].Answer)
}

func TestAskService_PassesConversationContext(t *testing.T) {
	f := newAskFixture("ANSWER: second")
	ctx := context.Background()
	require.NoError(t, f.memory.Append(ctx, "s1", "first question", "first answer"))

	_, err := f.service.Ask(ctx, "s1", "follow up")

	require.NoError(t, err)
	assert.Equal(t, "PREVIOUS CONVERSATION:\nUser: first question\nAI: first answer\n\n", f.answerer.conversation)
}

func TestAskService_DownloadOriginal(t *testing.T) {
	reply := "DOWNLOAD_ORIGINAL: true\nDOWNLOAD_SUMMARY: false\nFILENAME: policy.pdf\nANSWER: Here is policy.pdf."
	f := newAskFixture(reply, "policy.pdf")

	result, err := f.service.Ask(context.Background(), "s1", "Give me the policy")

	require.NoError(t, err)
	assert.Equal(t, "/download/policy.pdf", result.Downloads.Original)
	assert.Empty(t, result.Downloads.Summary)
	assert.Equal(t,
		"Here is policy.pdf.\n\n📎 **Download Links:**\n• [📄 Download Original PDF: policy.pdf](/download/policy.pdf)\n",
		result.Response)

	// memory keeps the answer without the footer
	assert.Equal(t, "Here is policy.pdf.", f.turns(t, "s1")[0].Answer)
}

func TestAskService_DownloadOriginal_UnknownFile(t *testing.T) {
	reply := "DOWNLOAD_ORIGINAL: true\nFILENAME: missing.pdf\nANSWER: Here it is."
	f := newAskFixture(reply, "policy.pdf")

	result, err := f.service.Ask(context.Background(), "s1", "Give me missing.pdf")

	require.NoError(t, err)
	assert.True(t, result.Downloads.IsEmpty())
	assert.Equal(t, "Here it is.", result.Response)
}

func TestAskService_Summary(t *testing.T) {
	reply := "DOWNLOAD_ORIGINAL: false\nDOWNLOAD_SUMMARY: true\nFILENAME: policy.pdf\nSUMMARY_CONTENT: # Overview\n- Refunds: 30 days\nANSWER: Summary attached."
	f := newAskFixture(reply, "policy.pdf")

	result, err := f.service.Ask(context.Background(), "s1", "Summarise the policy as PDF")

	require.NoError(t, err)
	assert.Equal(t, "/download-summary/summary_policy.pdf", result.Downloads.Summary)
	assert.Equal(t, "# Overview\n- Refunds: 30 days", f.summary.content)
	assert.Equal(t, "policy.pdf", f.summary.source)
	assert.Contains(t, result.Response, "• [📋 Download Summary PDF: summary_policy.pdf](/download-summary/summary_policy.pdf)\n")
}

func TestAskService_Summary_WithoutContent(t *testing.T) {
	reply := "DOWNLOAD_SUMMARY: true\nFILENAME: policy.pdf\nANSWER: ok"
	f := newAskFixture(reply, "policy.pdf")

	result, err := f.service.Ask(context.Background(), "s1", "summary please")

	require.NoError(t, err)
	assert.Empty(t, result.Downloads.Summary)
	assert.Empty(t, f.summary.source)
}

func TestAskService_Summary_RenderFailure(t *testing.T) {
	reply := "DOWNLOAD_SUMMARY: true\nFILENAME: policy.pdf\nSUMMARY_CONTENT: text\nANSWER: ok"
	f := newAskFixture(reply, "policy.pdf")
	f.summary.err = errors.New("disk full")

	result, err := f.service.Ask(context.Background(), "s1", "summary please")

	require.NoError(t, err)
	assert.Empty(t, result.Downloads.Summary)
	assert.Equal(t, "ok", result.Response)
}

func TestAskService_PipelineFailure(t *testing.T) {
	f := newAskFixture("")
	f.answerer.err = errors.New("connection reset")

	result, err := f.service.Ask(context.Background(), "s1", "q")

	require.NoError(t, err)
	assert.Equal(t, domain.MessagePipelineError, result.Response)
	assert.True(t, result.Downloads.IsEmpty())

	turns := f.turns(t, "s1")
	require.Len(t, turns, 1)
	assert.Equal(t, domain.MessagePipelineError, turns[0].Answer)
}

func TestAskService_IndexFailure(t *testing.T) {
	f := newAskFixture("ANSWER: x")
	f.indexer.err = domain.ErrEmbeddingUnavailable

	result, err := f.service.Ask(context.Background(), "s1", "q")

	require.NoError(t, err)
	assert.Equal(t, domain.MessagePipelineError, result.Response)
	assert.Zero(t, f.answerer.calls)
}

func TestAskService_EmptyReply(t *testing.T) {
	f := newAskFixture("DOWNLOAD_ORIGINAL: false\nANSWER:")

	result, err := f.service.Ask(context.Background(), "s1", "q")

	require.NoError(t, err)
	assert.Equal(t, domain.MessageNoAnswer, result.Response)
}

func TestFormatResponseWithLinks(t *testing.T) {
	assert.Equal(t, "answer", FormatResponseWithLinks("answer", domain.Downloads{}))

	out := FormatResponseWithLinks("answer", domain.Downloads{
		Original: "/download/a.pdf",
		Summary:  "/download-summary/summary_a.pdf",
	})
	assert.Equal(t,
		"answer\n\n📎 **Download Links:**\n"+
			"• [📄 Download Original PDF: a.pdf](/download/a.pdf)\n"+
			"• [📋 Download Summary PDF: summary_a.pdf](/download-summary/summary_a.pdf)\n",
		out)
}
