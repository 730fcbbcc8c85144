package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultContextWindow, svc.contextWindow)
	assert.NoError(t, svc.Close())
}

func TestLLMService_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "ANSWER: hello"},
			Done:    true,
		})
	}))
	t.Cleanup(srv.Close)
	svc := NewLLMService(Config{BaseURL: srv.URL, Model: "mistral"})

	out, err := svc.Generate(context.Background(), "prompt", driven.GenerateOptions{MaxTokens: 100, Temperature: 0.5})

	require.NoError(t, err)
	assert.Equal(t, "ANSWER: hello", out)
	assert.Equal(t, "mistral", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "prompt", got.Messages[0].Content)
	assert.Equal(t, DefaultContextWindow, got.Options.NumCtx)
	assert.Equal(t, 100, got.Options.NumPredict)
	require.NotNil(t, got.Options.Temperature)
	assert.Equal(t, 0.5, *got.Options.Temperature)
}

func TestLLMService_Generate_Errors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		_, err := NewLLMService(Config{BaseURL: srv.URL}).Generate(context.Background(), "p", driven.GenerateOptions{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "model not loaded")
	})

	t.Run("error field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":"out of memory"}`))
		}))
		t.Cleanup(srv.Close)

		_, err := NewLLMService(Config{BaseURL: srv.URL}).Generate(context.Background(), "p", driven.GenerateOptions{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of memory")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewLLMService(Config{BaseURL: url}).Generate(context.Background(), "p", driven.GenerateOptions{})

		assert.Error(t, err)
	})
}

func TestLLMService_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(srv.Close)

	assert.NoError(t, NewLLMService(Config{BaseURL: srv.URL}).Ping(context.Background()))
	assert.Error(t, NewLLMService(Config{BaseURL: srv.URL + "/missing"}).Ping(context.Background()))
}
