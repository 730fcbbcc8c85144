package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.Answerer = (*PipelineService)(nil)

// Prompt section markers.
const (
	contextHeader  = "CONTEXT FROM DOCUMENTS:"
	questionPrefix = "USER QUESTION: "
)

// PipelineService retrieves relevant chunks and asks the model once.
type PipelineService struct {
	indexer driving.Indexer
	llm     driven.LLMService
	files   driven.FileStore
	prompts driven.PromptStore
	topK    int
	opts    driven.GenerateOptions
}

// NewPipelineService creates a new retrieval and generation pipeline.
func NewPipelineService(
	indexer driving.Indexer,
	llm driven.LLMService,
	files driven.FileStore,
	prompts driven.PromptStore,
	topK int,
) *PipelineService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &PipelineService{
		indexer: indexer,
		llm:     llm,
		files:   files,
		prompts: prompts,
		topK:    topK,
	}
}

// WithGenerateOptions sets the options passed to every generation call.
func (s *PipelineService) WithGenerateOptions(opts driven.GenerateOptions) *PipelineService {
	s.opts = opts
	return s
}

// Answer retrieves the top chunks for the question, sends a single
// generation request and returns the raw reply unmodified.
// The index must already be ready.
func (s *PipelineService) Answer(ctx context.Context, question, conversationContext string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	chunks, err := s.indexer.Search(ctx, question, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	logger.Debug("retrieved %d chunks for %q", len(chunks), question)

	prompt, err := s.BuildPrompt(question, conversationContext, chunks)
	if err != nil {
		return "", err
	}

	reply, err := s.llm.Generate(ctx, prompt, s.opts)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return reply, nil
}

// BuildPrompt assembles the generation request: the instruction block with
// the available file list, the conversation context, the retrieved chunks
// and the question.
func (s *PipelineService) BuildPrompt(question, conversationContext string, chunks []domain.Chunk) (string, error) {
	template, err := s.prompts.Load(driven.PromptRAGAnswer)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", driven.PromptRAGAnswer, err)
	}

	files, err := s.fileList()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(fmt.Sprintf(template, files), "\n"))
	b.WriteString("\n\n")
	b.WriteString(conversationContext)
	b.WriteString("\n\n")
	b.WriteString(contextHeader)
	b.WriteString("\n")
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Content)
	}
	b.WriteString("\n\n")
	b.WriteString(questionPrefix)
	b.WriteString(question)
	b.WriteString("\n")

	return b.String(), nil
}

// fileList renders the uploaded filenames as "- name" lines.
func (s *PipelineService) fileList() (string, error) {
	docs, err := s.files.List(domain.FolderUploads)
	if err != nil {
		return "", fmt.Errorf("list uploads: %w", err)
	}

	lines := make([]string, len(docs))
	for i, d := range docs {
		lines[i] = "- " + d.Filename
	}
	return strings.Join(lines, "\n"), nil
}
