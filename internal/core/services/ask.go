package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// Download routes served by the HTTP adapter.
const (
	DownloadOriginalRoute = "/download/"
	DownloadSummaryRoute  = "/download-summary/"
)

// AskService answers a session's question end to end: index readiness,
// conversation context, generation, reply parsing, optional downloads and
// the memory update.
type AskService struct {
	indexer  driving.Indexer
	answerer driving.Answerer
	memory   driving.MemoryService
	files    driven.FileStore
	summary  driven.SummaryRenderer
}

// NewAskService creates a new ask service.
func NewAskService(
	indexer driving.Indexer,
	answerer driving.Answerer,
	memory driving.MemoryService,
	files driven.FileStore,
	summary driven.SummaryRenderer,
) *AskService {
	return &AskService{
		indexer:  indexer,
		answerer: answerer,
		memory:   memory,
		files:    files,
		summary:  summary,
	}
}

// Ask answers question for the session. Pipeline failures become a fixed
// apology; an error is returned only for a missing session ID.
func (s *AskService) Ask(ctx context.Context, sessionID, question string) (*domain.AskResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id: %w", domain.ErrInvalidInput)
	}

	result := &domain.AskResult{SessionID: sessionID}

	question = strings.TrimSpace(question)
	if question == "" {
		result.Response = domain.MessageEmptyQuestion
		return result, nil
	}

	ready, err := s.indexer.EnsureReady(ctx)
	if err != nil {
		logger.Warn("index build failed: %v", err)
		result.Response = domain.MessagePipelineError
		s.remember(ctx, sessionID, question, result.Response)
		return result, nil
	}
	if !ready {
		result.Response = domain.MessageNoDocuments
		return result, nil
	}

	conversation, err := s.memory.ContextFor(ctx, sessionID)
	if err != nil {
		logger.Warn("load conversation %s: %v", sessionID, err)
	}

	reply, err := s.answerer.Answer(ctx, question, conversation)
	if err != nil {
		logger.Warn("answer pipeline failed: %v", err)
		reply = domain.MessagePipelineError
	}

	ops := ParseReply(reply)
	answer := ExtractAnswer(reply)

	result.Operations = ops
	result.Downloads = s.downloads(ops)
	result.Response = FormatResponseWithLinks(answer, result.Downloads)

	s.remember(ctx, sessionID, question, answer)
	return result, nil
}

// downloads performs the requested file operations and returns their links.
func (s *AskService) downloads(ops domain.FileOperations) domain.Downloads {
	var d domain.Downloads
	if ops.Filename == "" {
		return d
	}

	if ops.DownloadOriginal {
		if s.files.Exists(domain.FolderUploads, ops.Filename) {
			d.Original = DownloadOriginalRoute + ops.Filename
		} else {
			logger.Debug("download requested for unknown file %q", ops.Filename)
		}
	}

	if ops.DownloadSummary && ops.SummaryContent != "" && s.summary != nil {
		name, err := s.summary.Render(ops.SummaryContent, ops.Filename)
		if err != nil {
			logger.Warn("render summary for %s: %v", ops.Filename, err)
		} else {
			d.Summary = DownloadSummaryRoute + name
		}
	}

	return d
}

func (s *AskService) remember(ctx context.Context, sessionID, question, answer string) {
	if err := s.memory.Append(ctx, sessionID, question, answer); err != nil {
		logger.Warn("store turn for %s: %v", sessionID, err)
	}
}

// FormatResponseWithLinks appends a download link footer to the answer.
func FormatResponseWithLinks(answer string, d domain.Downloads) string {
	if d.IsEmpty() {
		return answer
	}

	var b strings.Builder
	b.WriteString(answer)
	b.WriteString("\n\n📎 **Download Links:**\n")
	if d.Original != "" {
		fmt.Fprintf(&b, "• [📄 Download Original PDF: %s](%s)\n", path.Base(d.Original), d.Original)
	}
	if d.Summary != "" {
		fmt.Fprintf(&b, "• [📋 Download Summary PDF: %s](%s)\n", path.Base(d.Summary), d.Summary)
	}
	return b.String()
}
