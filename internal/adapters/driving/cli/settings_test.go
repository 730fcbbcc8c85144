package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.settings.settings.LLM.APIKey = "sk-1234567890abcdef"
	ts.settings.settings.LLM.RequestsPerMinute = 30

	out, err := executeCommand("", "settings", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "[Server]")
	assert.Contains(t, out, "Address: 0.0.0.0:5050")
	assert.Contains(t, out, "Max upload: 50.0 MB")
	assert.Contains(t, out, "Provider: DeepSeek (cloud)")
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "Requests per minute: 30")
	assert.Contains(t, out, "Max turns: 20")
	assert.Contains(t, out, "Console: disabled")
	assert.Contains(t, out, "Configuration is valid.")
	assert.NotContains(t, out, "1234567890")
}

func TestSettingsShow_ValidationWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.settings.validateErr = errors.New("LLM API key is missing")

	out, err := executeCommand("", "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Warning: LLM API key is missing")
}

func TestSettingsShow_NotConfigured(t *testing.T) {
	SetServices(nil)
	defer resetFlags()

	_, err := executeCommand("", "settings", "show")
	assert.Error(t, err)
}

func TestSettingsLLM_Interactive(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	// Choice 2 is Ollama, which needs no API key.
	out, err := executeCommand("2\n\n", "settings", "llm")
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, ts.settings.llm)
	assert.Equal(t, "llama3.2", ts.settings.llmModel)
	assert.Contains(t, out, "Configured: Ollama (local) (llama3.2)")
}

func TestSettingsEmbedding_CustomModel(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	// Choice 2 is OpenAI; the empty key line falls back to the environment.
	_, err := executeCommand("2\ntext-embedding-3-large\n\n", "settings", "embedding")
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", ts.settings.settings.Embedding.Model)
}
