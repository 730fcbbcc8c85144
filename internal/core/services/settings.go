package services

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyServerAddr      = "server.addr"
	keyServerSecretKey = "server.secret_key"
	keyServerMaxUpload = "server.max_upload_bytes"
	keyUploadDir       = "storage.upload_dir"
	keyDownloadDir     = "storage.download_dir"
	keyDataDir         = "storage.data_dir"
	keyWatch           = "storage.watch"
	keyChunkSize       = "rag.chunk_size"
	keyChunkOverlap    = "rag.chunk_overlap"
	keyTopK            = "rag.top_k"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMRPM          = "llm.requests_per_minute"
	keyMemoryBackend   = "memory.backend"
	keyMemoryMaxTurns  = "memory.max_turns"
	keyMemoryRedisURL  = "memory.redis_url"
	keyVectorBackend   = "vector_index.backend"
	keyVectorPostgres  = "vector_index.postgres_url"
	keyAdminUsername   = "admin.username"
	keyAdminPassword   = "admin.password_hash"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultDeepSeekURL = "https://api.deepseek.com"
	errAPIKeyRequired  = "API key required for %s"
)

// Environment variables that override the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvDeepSeekAPIKey    = "DEEPSEEK_API_KEY"
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvAnthropicAPIKey   = "ANTHROPIC_API_KEY"
	EnvGeminiAPIKey      = "GEMINI_API_KEY"
	EnvSecretKey         = "PDFIQ_SECRET_KEY"
	EnvAdminPasswordHash = "PDFIQ_ADMIN_PASSWORD_HASH"
	EnvRedisURL          = "PDFIQ_REDIS_URL"
	EnvPostgresURL       = "PDFIQ_POSTGRES_URL"
)

// providerKeyEnv maps cloud providers to their API key variable.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderDeepSeek:  EnvDeepSeekAPIKey,
	domain.AIProviderOpenAI:    EnvOpenAIAPIKey,
	domain.AIProviderAnthropic: EnvAnthropicAPIKey,
	domain.AIProviderGoogle:    EnvGeminiAPIKey,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading overrides
// from the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.fromConfig()
	s.applyEnv(settings)
	return settings, nil
}

// fromConfig reads the config file over the defaults.
func (s *SettingsService) fromConfig() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	return &domain.AppSettings{
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
			SecretKey:      s.configStore.GetString(keyServerSecretKey),
			MaxUploadBytes: int64(s.getInt(keyServerMaxUpload, int(defaults.Server.MaxUploadBytes))),
		},
		Storage: domain.StorageSettings{
			UploadDir:   s.getString(keyUploadDir, defaults.Storage.UploadDir),
			DownloadDir: s.getString(keyDownloadDir, defaults.Storage.DownloadDir),
			DataDir:     s.configStore.GetString(keyDataDir),
			Watch:       s.getBool(keyWatch, defaults.Storage.Watch),
		},
		RAG: domain.RAGSettings{
			ChunkSize:    s.getInt(keyChunkSize, defaults.RAG.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, defaults.RAG.ChunkOverlap),
			TopK:         s.getInt(keyTopK, defaults.RAG.TopK),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.configStore.GetInt(keyLLMRPM),
		},
		Memory: domain.MemorySettings{
			Backend:  s.getMemoryBackend(defaults.Memory.Backend),
			MaxTurns: s.getInt(keyMemoryMaxTurns, defaults.Memory.MaxTurns),
			RedisURL: s.configStore.GetString(keyMemoryRedisURL),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:     s.getVectorBackend(defaults.VectorIndex.Backend),
			PostgresURL: s.configStore.GetString(keyVectorPostgres),
		},
		Admin: domain.AdminSettings{
			Username:     s.getString(keyAdminUsername, defaults.Admin.Username),
			PasswordHash: s.configStore.GetString(keyAdminPassword),
		},
	}
}

// applyEnv overlays environment variables. Set variables always win.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if key := s.envKeyFor(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}
	if key := s.envKeyFor(settings.Embedding.Provider); key != "" {
		settings.Embedding.APIKey = key
	}
	if v := s.getenv(EnvSecretKey); v != "" {
		settings.Server.SecretKey = v
	}
	if v := s.getenv(EnvAdminPasswordHash); v != "" {
		settings.Admin.PasswordHash = v
	}
	if v := s.getenv(EnvRedisURL); v != "" {
		settings.Memory.RedisURL = v
	}
	if v := s.getenv(EnvPostgresURL); v != "" {
		settings.VectorIndex.PostgresURL = v
	}

	// DeepSeek speaks the OpenAI protocol at its own endpoint
	if settings.LLM.Provider == domain.AIProviderDeepSeek && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultDeepSeekURL
	}
}

func (s *SettingsService) envKeyFor(provider domain.AIProvider) string {
	name, ok := providerKeyEnv[provider]
	if !ok {
		return ""
	}
	return s.getenv(name)
}

// Save persists application settings.
// Values that came from the environment are not written to the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	fromEnv := s.envOnly(settings)

	values := []struct {
		key   string
		value any
	}{
		{keyServerAddr, settings.Server.Addr},
		{keyServerMaxUpload, settings.Server.MaxUploadBytes},
		{keyUploadDir, settings.Storage.UploadDir},
		{keyDownloadDir, settings.Storage.DownloadDir},
		{keyDataDir, settings.Storage.DataDir},
		{keyWatch, settings.Storage.Watch},
		{keyChunkSize, settings.RAG.ChunkSize},
		{keyChunkOverlap, settings.RAG.ChunkOverlap},
		{keyTopK, settings.RAG.TopK},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRPM, settings.LLM.RequestsPerMinute},
		{keyMemoryBackend, settings.Memory.Backend.String()},
		{keyMemoryMaxTurns, settings.Memory.MaxTurns},
		{keyVectorBackend, settings.VectorIndex.Backend.String()},
		{keyAdminUsername, settings.Admin.Username},
	}

	secrets := []struct {
		key   string
		value string
	}{
		{keyServerSecretKey, settings.Server.SecretKey},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyMemoryRedisURL, settings.Memory.RedisURL},
		{keyVectorPostgres, settings.VectorIndex.PostgresURL},
		{keyAdminPassword, settings.Admin.PasswordHash},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	for _, v := range secrets {
		if v.value == "" || fromEnv[v.key] {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// envOnly returns the secret keys whose current value is supplied by the
// environment rather than the config file.
func (s *SettingsService) envOnly(settings *domain.AppSettings) map[string]bool {
	matches := func(env, value string) bool {
		if env == "" {
			return false
		}
		v := s.getenv(env)
		return v != "" && v == value
	}
	return map[string]bool{
		keyServerSecretKey: matches(EnvSecretKey, settings.Server.SecretKey),
		keyEmbedAPIKey:     matches(providerKeyEnv[settings.Embedding.Provider], settings.Embedding.APIKey),
		keyLLMAPIKey:       matches(providerKeyEnv[settings.LLM.Provider], settings.LLM.APIKey),
		keyMemoryRedisURL:  matches(EnvRedisURL, settings.Memory.RedisURL),
		keyVectorPostgres:  matches(EnvPostgresURL, settings.VectorIndex.PostgresURL),
		keyAdminPassword:   matches(EnvAdminPasswordHash, settings.Admin.PasswordHash),
	}
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKeyFor(provider) == "" {
		return fmt.Errorf(errAPIKeyRequired, provider)
	}

	settings := s.fromConfig()
	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.envKeyFor(provider) == "" {
		return fmt.Errorf(errAPIKeyRequired, provider)
	}

	settings := s.fromConfig()
	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetAdminPasswordHash stores the bcrypt hash for the admin console.
func (s *SettingsService) SetAdminPasswordHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("password hash: %w", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyAdminPassword, hash); err != nil {
		return fmt.Errorf("save %s: %w", keyAdminPassword, err)
	}
	return nil
}

// Validate checks that the settings can serve requests.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider))
	}
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if settings.RAG.ChunkSize <= 0 || settings.RAG.ChunkOverlap < 0 || settings.RAG.ChunkOverlap >= settings.RAG.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk size %d with overlap %d: %w",
			settings.RAG.ChunkSize, settings.RAG.ChunkOverlap, domain.ErrInvalidInput))
	}
	if settings.RAG.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top_k %d: %w", settings.RAG.TopK, domain.ErrInvalidInput))
	}
	if settings.Memory.Backend == domain.MemoryBackendRedis && settings.Memory.RedisURL == "" {
		errs = append(errs, fmt.Errorf("memory backend redis requires %s", EnvRedisURL))
	}
	if settings.VectorIndex.Backend == domain.VectorBackendPGVector && settings.VectorIndex.PostgresURL == "" {
		errs = append(errs, fmt.Errorf("vector backend pgvector requires %s", EnvPostgresURL))
	}

	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom endpoint for local providers and
// resets it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if provider.IsLocal() {
		if current == "" {
			return defaultOllamaURL
		}
		return current
	}
	return ""
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getMemoryBackend(defaultVal domain.MemoryBackend) domain.MemoryBackend {
	backend := domain.MemoryBackend(s.configStore.GetString(keyMemoryBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getVectorBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
