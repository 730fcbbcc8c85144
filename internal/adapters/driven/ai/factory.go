// Package ai provides factory functions for creating AI service adapters
// and the vector index they feed.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	googleembed "github.com/custodia-labs/pdfiq/internal/adapters/driven/embedding/google"
	ollamaembed "github.com/custodia-labs/pdfiq/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/pdfiq/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/pdfiq/internal/adapters/driven/llm/anthropic"
	googlellm "github.com/custodia-labs/pdfiq/internal/adapters/driven/llm/google"
	ollamallm "github.com/custodia-labs/pdfiq/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pdfiq/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pdfiq/internal/adapters/driven/llm/throttle"
	memoryvector "github.com/custodia-labs/pdfiq/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/pdfiq/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the services created by Init.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService // nil when the LLM is not configured.
	VectorFactory    driven.VectorIndexFactory
	Warnings         []string // Non-fatal issues found while connecting.

	closers []func() error
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	var errs []error
	if r.EmbeddingService != nil {
		errs = append(errs, r.EmbeddingService.Close())
	}
	if r.LLMService != nil {
		errs = append(errs, r.LLMService.Close())
	}
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Init creates the embedding service, the LLM and the vector index factory.
//
// An unusable embedding provider or vector backend is an error because
// nothing can be indexed without them. An unconfigured LLM is only a
// warning: questions are then answered with the failure message.
// Unreachable providers are reported as warnings so the server can start
// before a local model server does.
func Init(ctx context.Context, settings *domain.AppSettings) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	result.EmbeddingService = embedder
	if err := ping(ctx, embedder.Ping); err != nil {
		result.warn("embedding service %s unreachable: %v", embedder.ModelName(), err)
	}

	llm, err := CreateLLMService(ctx, &settings.LLM)
	switch {
	case err != nil:
		result.warn("LLM unavailable: %v", err)
	case llm == nil:
		result.warn("LLM provider %q is not configured", settings.LLM.Provider)
	default:
		result.LLMService = llm
		if err := ping(ctx, llm.Ping); err != nil {
			result.warn("LLM %s unreachable: %v", llm.ModelName(), err)
		}
	}

	factory, closer, err := CreateVectorFactory(ctx, &settings.VectorIndex)
	if err != nil {
		_ = result.Close()
		return nil, err
	}
	result.VectorFactory = factory
	if closer != nil {
		result.closers = append(result.closers, closer)
	}

	return result, nil
}

func (r *InitResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pdfiq settings' to fix", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pdfiq settings' to fix", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service for the configured provider.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGoogle:
		return googleembed.NewEmbeddingService(ctx, googleembed.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	case domain.AIProviderAnthropic, domain.AIProviderDeepSeek:
		return nil, fmt.Errorf("%s does not provide embeddings, use ollama, openai or google", settings.Provider)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service for the configured provider,
// throttled to the configured requests per minute.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := createLLM(ctx, settings)
	if err != nil {
		return nil, err
	}
	return throttle.New(svc, settings.RequestsPerMinute), nil
}

func createLLM(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderDeepSeek:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = openaillm.DeepSeekBaseURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGoogle:
		return googlellm.NewLLMService(ctx, googlellm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateVectorFactory creates the index factory for the configured backend.
// The returned closer, when non-nil, releases the backend connection.
func CreateVectorFactory(
	ctx context.Context,
	settings *domain.VectorIndexSettings,
) (driven.VectorIndexFactory, func() error, error) {
	switch settings.Backend {
	case domain.VectorBackendMemory, "":
		return memoryvector.NewFactory(), nil, nil

	case domain.VectorBackendPGVector:
		f, err := pgvector.Open(ctx, settings.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unsupported vector backend %q", domain.ErrVectorIndexUnavailable, settings.Backend)
	}
}
