package driven

import "context"

// LLMService generates text from a prompt.
//
// Implementations include:
//   - DeepSeek and OpenAI (OpenAI compatible chat completions)
//   - Anthropic (Claude)
//   - Google (Gemini)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a completion for a single user prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
