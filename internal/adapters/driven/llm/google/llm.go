// Package google provides an LLM service adapter using the Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the LLM model to use (default: gemini-1.5-flash).
	Model string
}

// generateFunc runs one completion and returns the candidate text parts.
type generateFunc func(ctx context.Context, prompt string, opts driven.GenerateOptions) ([]string, error)

// LLMService generates completions with Gemini.
type LLMService struct {
	client   *genai.Client
	model    string
	generate generateFunc
	info     func(ctx context.Context) error
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}

	s := &LLMService{
		client: client,
		model:  cfg.Model,
	}
	s.generate = func(ctx context.Context, prompt string, opts driven.GenerateOptions) ([]string, error) {
		// GenerativeModel carries its config, so build one per call.
		gm := client.GenerativeModel(cfg.Model)
		if opts.Temperature > 0 {
			gm.SetTemperature(float32(opts.Temperature))
		}
		if opts.MaxTokens > 0 {
			gm.SetMaxOutputTokens(int32(opts.MaxTokens))
		}
		if len(opts.StopWords) > 0 {
			gm.StopSequences = opts.StopWords
		}

		resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, nil
		}

		var parts []string
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				parts = append(parts, string(text))
			}
		}
		return parts, nil
	}
	s.info = func(ctx context.Context) error {
		_, err := client.GenerativeModel(cfg.Model).Info(ctx)
		return err
	}

	return s, nil
}

// Generate sends the prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	parts, err := s.generate(ctx, prompt, opts)
	if err != nil {
		return "", fmt.Errorf("google: generate: %w", err)
	}

	text := strings.Join(parts, "")
	if text == "" {
		return "", errors.New("google: no text content returned")
	}
	return text, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model description, which validates the key.
func (s *LLMService) Ping(ctx context.Context) error {
	if s.info == nil {
		return nil
	}
	if err := s.info(ctx); err != nil {
		return fmt.Errorf("google: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
