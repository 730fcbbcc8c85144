package http

import (
	"encoding/json"
	"net/http"

	"github.com/custodia-labs/pdfiq/internal/logger"
)

// errorResponse is the JSON body of every error.
type errorResponse struct {
	Error string `json:"error"`
}

// statusResponse acknowledges a state change.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusFound)
}
