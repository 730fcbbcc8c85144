package driving

import "github.com/custodia-labs/pdfiq/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get composes the effective settings: defaults, then the config file,
	// then environment overrides.
	Get() (*domain.AppSettings, error)

	// Save persists settings to the config file. Secrets supplied through
	// the environment are not written back.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetAdminPasswordHash stores the bcrypt hash for the admin console.
	SetAdminPasswordHash(hash string) error

	// Validate checks the settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
