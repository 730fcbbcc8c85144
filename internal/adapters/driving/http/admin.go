package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

const (
	msgAdminDisabled = "Admin console is disabled. Run 'pdfiq admin hash-password' to set a password."
	msgBadLogin      = "Invalid username or password"
	msgLoggedOut     = "You have been logged out"
)

// requireAdmin rejects callers without an admin session. API routes get a
// 401 JSON error, pages a redirect to the login form.
func (s *Server) requireAdmin(next http.Handler, api bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.isAdmin(r) {
			next.ServeHTTP(w, r)
			return
		}
		if api {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		redirect(w, r, "/admin-login")
	})
}

func (s *Server) handleAdminLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.isAdmin(r) {
		redirect(w, r, "/admin")
		return
	}
	s.render(w, "admin_login.html", map[string]any{
		"Flashes":  s.flashes(w, r),
		"Disabled": !s.cfg.Admin.Enabled(),
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Admin.Enabled() {
		s.flash(w, r, msgAdminDisabled)
		redirect(w, r, "/admin-login")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if err := s.checkCredentials(username, password); err != nil {
		logger.Warn("admin login failed for %q from %s", username, r.RemoteAddr)
		s.flash(w, r, msgBadLogin)
		redirect(w, r, "/admin-login")
		return
	}

	sess := s.session(r)
	sess.Values[keyAdmin] = true
	s.save(w, r, sess)
	logger.Info("admin logged in from %s", r.RemoteAddr)
	redirect(w, r, "/admin")
}

// checkCredentials compares the username in constant time and the
// password against the bcrypt hash.
func (s *Server) checkCredentials(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Admin.Username)) == 1
	hashErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.Admin.PasswordHash), []byte(password))
	if !userOK || hashErr != nil {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	delete(sess.Values, keyAdmin)
	sess.AddFlash(msgLoggedOut)
	s.save(w, r, sess)
	redirect(w, r, "/admin-login")
}

// handleAdmin renders both folders, index state and session count.
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uploads, err := s.ports.Documents.List(ctx, domain.FolderUploads)
	if err != nil {
		logger.Error("list uploads: %v", err)
	}
	summaries, err := s.ports.Documents.List(ctx, domain.FolderDownloads)
	if err != nil {
		logger.Error("list summaries: %v", err)
	}
	sessions, err := s.ports.Memory.Sessions(ctx)
	if err != nil {
		logger.Error("list sessions: %v", err)
	}

	data := map[string]any{
		"Flashes":   s.flashes(w, r),
		"Uploads":   fileViews(uploads),
		"Summaries": fileViews(summaries),
		"Sessions":  len(sessions),
	}
	if s.ports.Indexer != nil {
		data["Index"] = s.ports.Indexer.Stats()
	}
	s.render(w, "admin.html", data)
}

// deleteRequest is the /delete-file body.
type deleteRequest struct {
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
}

// handleDeleteFile removes an upload or a summary.
func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be JSON like {\"folder\": \"uploads\", \"filename\": \"...\"}")
		return
	}

	folder := domain.Folder(req.Folder)
	err := s.ports.Documents.Delete(r.Context(), folder, req.Filename)
	switch {
	case err == nil:
		logger.Info("admin deleted %s/%s", folder, req.Filename)
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  "success",
			Message: fmt.Sprintf("File %s deleted", req.Filename),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, msgFileNotFound)
	case errors.Is(err, domain.ErrInvalidFolder), errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("delete %s/%s: %v", folder, req.Filename, err)
		writeError(w, http.StatusInternalServerError, "Could not delete file")
	}
}
