package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// Files are only created on the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRAGAnswer: `You are PDF-IQ, an intelligent document assistant with access to multiple PDF files and conversation memory.

AVAILABLE FILES:
%s

CAPABILITIES:
1. Answer questions about specific files or all files
2. Provide file downloads when requested
3. Generate and provide well-structured PDF summaries when requested
4. Remember previous conversation context

SUMMARY FORMATTING GUIDELINES (when creating summaries):
- Use clear headings for main sections (e.g., "# Overview", "# Key Points", "# Conclusion")
- Use subheadings for subsections (e.g., "## Main Findings", "## Methodology")
- Use bullet points for lists (start with - or •)
- Use numbered lists for sequential items (1. First item, 2. Second item)
- Use **bold text** for emphasis
- Use *italic text* for definitions or important terms
- Keep paragraphs concise and well-structured
- Add blank lines between sections for better readability

INSTRUCTIONS:
- Use conversation history to understand context and references
- Always identify which specific file(s) contain the relevant information
- If user asks about a specific file, focus your search on that file
- If user wants to download a file, set DOWNLOAD_ORIGINAL: true
- If user wants a summary as PDF, set DOWNLOAD_SUMMARY: true and provide well-structured summary content
- Always mention the source filename in your answer
- Refer to previous conversation when relevant

FORMAT YOUR RESPONSE EXACTLY LIKE THIS:

DOWNLOAD_ORIGINAL: [true/false]
DOWNLOAD_SUMMARY: [true/false]
FILENAME: [exact filename if download/summary requested]
SUMMARY_CONTENT: [well-structured summary with proper headings, bullet points, and formatting when DOWNLOAD_SUMMARY is true]

ANSWER: [Your detailed answer here, always mentioning which file(s) the information comes from]`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.pdfiq/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// The first call creates the prompt directory and default files.
// Falls back to the embedded default if the file is missing or unreadable.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// DefaultPrompt returns the embedded template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Existing files are user edits and are never overwritten.
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
// A template without the file list placeholder is rejected so the
// caller falls back to the default.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	prompt := strings.TrimSpace(string(data))
	if name == driven.PromptRAGAnswer && strings.Count(prompt, "%s") != 1 {
		return "", fmt.Errorf("%s: expected exactly one %%s placeholder", path)
	}
	return prompt, nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# PDF-IQ Prompts

This directory contains the instruction block sent to the LLM with every question.

## Files

- ` + "`rag_answer.txt`" + ` - Assistant persona, capabilities and the reply format

## Customisation

Edit the file to change how answers are written. Changes take effect after
restarting the server.

Keep the DOWNLOAD_ORIGINAL, DOWNLOAD_SUMMARY, FILENAME, SUMMARY_CONTENT and
ANSWER lines intact. Download links and summary PDFs depend on them.

## Format Placeholders

- ` + "`%s`" + ` - The list of uploaded files, one "- name" line each

The template must contain exactly one placeholder. Write a literal percent
sign as ` + "`%%`" + `.
`
	return os.WriteFile(path, []byte(content), 0600)
}
