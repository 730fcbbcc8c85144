package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderDeepSeek is the DeepSeek API (OpenAI compatible).
	AIProviderDeepSeek AIProvider = "deepseek"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGoogle is the Gemini API.
	AIProviderGoogle AIProvider = "google"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderDeepSeek, AIProviderAnthropic, AIProviderGoogle:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && !p.IsLocal()
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderDeepSeek:
		return "DeepSeek (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGoogle:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// MemoryBackend selects where conversation memory lives.
type MemoryBackend string

// Available memory backends.
const (
	// MemoryBackendMemory keeps sessions in process. Lost on restart.
	MemoryBackendMemory MemoryBackend = "memory"

	// MemoryBackendSQLite persists sessions to a local database file.
	MemoryBackendSQLite MemoryBackend = "sqlite"

	// MemoryBackendRedis shares sessions between worker processes.
	MemoryBackendRedis MemoryBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b MemoryBackend) IsValid() bool {
	switch b {
	case MemoryBackendMemory, MemoryBackendSQLite, MemoryBackendRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b MemoryBackend) String() string {
	return string(b)
}

// VectorBackend selects where chunk embeddings are stored and searched.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory is a brute-force in-process index.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendPGVector stores embeddings in PostgreSQL with pgvector.
	VectorBackendPGVector VectorBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendMemory || b == VectorBackendPGVector
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// SecretKey signs the session cookie.
	SecretKey string

	// MaxUploadBytes caps the multipart request size.
	MaxUploadBytes int64
}

// StorageSettings holds on-disk locations.
type StorageSettings struct {
	// UploadDir holds uploaded PDFs.
	UploadDir string

	// DownloadDir holds generated summaries.
	DownloadDir string

	// DataDir holds the SQLite memory database.
	DataDir string

	// Watch enables upload directory change detection.
	Watch bool
}

// RAGSettings holds chunking and retrieval configuration.
type RAGSettings struct {
	// ChunkSize is the maximum number of characters per chunk.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent chunks.
	ChunkOverlap int

	// TopK is the number of chunks retrieved per question.
	TopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (Ollama, or an OpenAI compatible server).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// RequestsPerMinute throttles generation calls. Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// MemorySettings holds conversation memory configuration.
type MemorySettings struct {
	// Backend selects the conversation store.
	Backend MemoryBackend

	// MaxTurns is the per-session FIFO capacity.
	MaxTurns int

	// RedisURL is used by the redis backend.
	RedisURL string
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the vector store.
	Backend VectorBackend

	// PostgresURL is used by the pgvector backend.
	PostgresURL string
}

// AdminSettings holds admin console credentials.
type AdminSettings struct {
	// Username is the admin login name.
	Username string

	// PasswordHash is a bcrypt hash. Empty disables the admin console.
	PasswordHash string
}

// Enabled returns true if admin login is possible.
func (a AdminSettings) Enabled() bool {
	return a.Username != "" && a.PasswordHash != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Server      ServerSettings
	Storage     StorageSettings
	RAG         RAGSettings
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	Memory      MemorySettings
	VectorIndex VectorIndexSettings
	Admin       AdminSettings
}

// Default setting values.
const (
	DefaultAddr           = "0.0.0.0:5050"
	DefaultMaxUploadBytes = 50 * 1024 * 1024
	DefaultUploadDir      = "uploads"
	DefaultDownloadDir    = "downloads"
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultTopK           = 4
	DefaultAdminUsername  = "admin"
)

// DefaultAppSettings returns settings with sensible defaults.
// API keys and the admin password are left empty.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{
			Addr:           DefaultAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Storage: StorageSettings{
			UploadDir:   DefaultUploadDir,
			DownloadDir: DefaultDownloadDir,
			Watch:       true,
		},
		RAG: RAGSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			TopK:         DefaultTopK,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{
			Provider: AIProviderDeepSeek,
			Model:    DefaultLLMModels()[AIProviderDeepSeek],
		},
		Memory: MemorySettings{
			Backend:  MemoryBackendMemory,
			MaxTurns: DefaultMaxTurns,
		},
		VectorIndex: VectorIndexSettings{
			Backend: VectorBackendMemory,
		},
		Admin: AdminSettings{
			Username: DefaultAdminUsername,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGoogle,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderDeepSeek,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGoogle,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGoogle: "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderDeepSeek:  "deepseek-chat",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGoogle:    "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Google models
		"text-embedding-004": 768,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns the chunking pipeline for the given RAG settings.
func PipelineConfigFor(rag RAGSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "trim"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": rag.ChunkSize,
				"overlap":    rag.ChunkOverlap,
			},
		},
	}
}
