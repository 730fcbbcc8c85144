package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// User-facing messages.
const (
	msgNoFile        = "No file selected"
	msgNotPDF        = "Please upload a PDF file"
	msgUploaded      = "File %s uploaded successfully! The document will now be processed for RAG."
	msgTooLarge      = "File is too large (maximum %s)"
	msgUploadFailed  = "Upload failed, please try again"
	msgFileNotFound  = "File not found"
	msgMemoryCleared = "Conversation memory cleared"
)

// maxAskBody caps the JSON body of /ask.
const maxAskBody = 64 << 10

// fileView is a document row on the HTML pages.
type fileView struct {
	Filename string
	Size     string
	Modified string
}

func fileViews(docs []domain.Document) []fileView {
	views := make([]fileView, len(docs))
	for i, d := range docs {
		views[i] = fileView{
			Filename: d.Filename,
			Size:     d.FormatSize(),
			Modified: d.ModTime.Format(time.DateTime),
		}
	}
	return views
}

// handleIndex renders the upload page with the uploaded PDFs.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Documents.List(r.Context(), domain.FolderUploads)
	if err != nil {
		logger.Error("list uploads: %v", err)
		docs = nil
	}

	s.render(w, "index.html", map[string]any{
		"Flashes": s.flashes(w, r),
		"Files":   fileViews(docs),
	})
}

// handleUpload stores one multipart file field named "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		switch {
		case isTooLarge(err):
			s.flash(w, r, fmt.Sprintf(msgTooLarge, domain.FormatSize(s.cfg.MaxUploadBytes)))
		case errors.Is(err, http.ErrMissingFile):
			s.flash(w, r, msgNoFile)
		default:
			logger.Warn("read upload: %v", err)
			s.flash(w, r, msgUploadFailed)
		}
		redirect(w, r, "/")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.flash(w, r, msgNoFile)
		redirect(w, r, "/")
		return
	}

	doc, err := s.ports.Documents.Upload(r.Context(), header.Filename, file)
	switch {
	case err == nil:
		s.flash(w, r, fmt.Sprintf(msgUploaded, doc.Filename))
	case errors.Is(err, domain.ErrUnsupportedFileType), errors.Is(err, domain.ErrInvalidInput):
		s.flash(w, r, msgNotPDF)
	case isTooLarge(err):
		s.flash(w, r, fmt.Sprintf(msgTooLarge, domain.FormatSize(s.cfg.MaxUploadBytes)))
	default:
		logger.Error("store upload %s: %v", header.Filename, err)
		s.flash(w, r, msgUploadFailed)
	}
	redirect(w, r, "/")
}

// isTooLarge reports whether err comes from the upload size cap. The
// multipart reader does not always wrap it.
func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

// handleChat renders the chat page and establishes the session.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	s.render(w, "chat.html", map[string]any{
		"SessionID": id,
	})
}

// askRequest is the /ask body.
type askRequest struct {
	Question string `json:"question"`
}

// handleAsk answers a question for the caller's session.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	body := http.MaxBytesReader(w, r.Body, maxAskBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Request body must be JSON like {\"question\": \"...\"}")
		return
	}

	id := s.sessionID(w, r)
	result, err := s.ports.Ask.Ask(r.Context(), id, req.Question)
	if err != nil {
		logger.Error("ask: %v", err)
		writeJSON(w, http.StatusOK, domain.AskResult{
			Response:  domain.MessagePipelineError,
			SessionID: id,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, domain.FolderUploads)
}

func (s *Server) handleDownloadSummary(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, domain.FolderDownloads)
}

// serveFile streams a stored PDF as an attachment, or 404s.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, folder domain.Folder) {
	name := mux.Vars(r)["filename"]

	rc, doc, err := s.ports.Documents.Open(r.Context(), folder, name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput) {
			logger.Error("open %s/%s: %v", folder, name, err)
		}
		writeError(w, http.StatusNotFound, msgFileNotFound)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, doc.Filename, doc.ModTime, rs)
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		logger.Debug("stream %s: %v", name, err)
	}
}

// handleClearMemory forgets the caller's conversation.
func (s *Server) handleClearMemory(w http.ResponseWriter, r *http.Request) {
	if id := s.existingSessionID(r); id != "" {
		if err := s.ports.Memory.Clear(r.Context(), id); err != nil {
			logger.Error("clear memory %s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "Could not clear memory")
			return
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: msgMemoryCleared})
}

// handleMemoryStats reports how many turns the caller's session holds.
func (s *Server) handleMemoryStats(w http.ResponseWriter, r *http.Request) {
	id := s.existingSessionID(r)
	if id == "" {
		writeJSON(w, http.StatusOK, domain.MemoryStats{MaxSize: s.maxTurns(r)})
		return
	}

	stats, err := s.ports.Memory.Stats(r.Context(), id)
	if err != nil {
		logger.Error("memory stats %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Could not read memory")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// maxTurns asks the memory service for its cap using an empty session.
func (s *Server) maxTurns(r *http.Request) int {
	stats, err := s.ports.Memory.Stats(r.Context(), "")
	if err != nil || stats.MaxSize == 0 {
		return domain.DefaultMaxTurns
	}
	return stats.MaxSize
}
