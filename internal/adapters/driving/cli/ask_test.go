package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("", "ask")
	assert.Error(t, err)
}

func TestAskCmd_NotConfigured(t *testing.T) {
	SetServices(nil)
	defer resetFlags()

	_, err := executeCommand("", "ask", "hello")
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestAskCmd_JoinsArgsIntoQuestion(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("", "ask", "what", "is", "the", "refund", "policy?")
	require.NoError(t, err)

	require.Len(t, ts.ask.asked, 1)
	assert.Equal(t, "what is the refund policy?", ts.ask.asked[0])
	assert.Equal(t, DefaultCLISession, ts.ask.sessions[0])
	assert.Contains(t, out, "answer to what is the refund policy?")
}

func TestAskCmd_SessionFlag(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("", "ask", "--session", "work", "hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"work"}, ts.ask.sessions)
}

func TestAskCmd_PrintsDownloadLinks(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ask.result = &domain.AskResult{
		Response: "Here is the file.",
		Downloads: domain.Downloads{
			Original: "/uploads/policy.pdf",
			Summary:  "/downloads/summary.pdf",
		},
	}

	out, err := executeCommand("", "ask", "send", "it")
	require.NoError(t, err)

	assert.Contains(t, out, "Here is the file.")
	assert.Contains(t, out, "Original: http://localhost:5050/uploads/policy.pdf")
	assert.Contains(t, out, "Summary:  http://localhost:5050/downloads/summary.pdf")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ask.result = &domain.AskResult{
		Response:  "Done.",
		Downloads: domain.Downloads{Original: "/uploads/a.pdf"},
	}

	out, err := executeCommand("", "ask", "--json", "send", "a")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Done.", got["response"])
	assert.Equal(t, DefaultCLISession, got["session_id"])
	downloads, ok := got["downloads"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/uploads/a.pdf", downloads["original"])
}

func TestAskCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.ask.err = errors.New("boom")

	_, err := executeCommand("", "ask", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
}

func TestServerURL(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	tests := []struct {
		addr string
		want string
	}{
		{"0.0.0.0:5050", "http://localhost:5050"},
		{":8080", "http://localhost:8080"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000"},
		{"", "http://localhost:5050"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			ts.settings.settings.Server.Addr = tt.addr
			assert.Equal(t, tt.want, serverURL())
		})
	}
}

func TestServerURL_NoSettings(t *testing.T) {
	SetServices(nil)
	assert.Equal(t, "http://localhost:5050", serverURL())
}
