package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverPanics, logRequests)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodGet)
	r.HandleFunc("/ask", s.handleAsk).Methods(http.MethodPost)
	r.HandleFunc("/download/{filename}", s.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/download-summary/{filename}", s.handleDownloadSummary).Methods(http.MethodGet)
	r.HandleFunc("/clear-memory", s.handleClearMemory).Methods(http.MethodPost)
	r.HandleFunc("/memory-stats", s.handleMemoryStats).Methods(http.MethodGet)

	r.HandleFunc("/admin-login", s.handleAdminLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/admin-login", s.handleAdminLogin).Methods(http.MethodPost)
	r.HandleFunc("/admin-logout", s.handleAdminLogout).Methods(http.MethodGet)
	r.Handle("/admin", s.requireAdmin(http.HandlerFunc(s.handleAdmin), false)).Methods(http.MethodGet)
	r.Handle("/delete-file", s.requireAdmin(http.HandlerFunc(s.handleDeleteFile), true)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}
