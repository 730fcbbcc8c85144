// Package http serves the PDF-IQ web interface: document upload, the chat
// page and its JSON API, file downloads and the admin console.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Server timeouts. WriteTimeout is generous because /ask waits for the LLM.
const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 5 * time.Minute
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// Config holds web server settings.
type Config struct {
	// Addr is the listen address, e.g. "0.0.0.0:5050".
	Addr string

	// SecretKey signs the session cookie. A random key is generated when
	// empty, so sessions do not survive a restart.
	SecretKey string

	// MaxUploadBytes caps the upload request size.
	MaxUploadBytes int64

	// Admin holds the admin console credentials.
	Admin domain.AdminSettings

	// SecureCookie marks the session cookie Secure (HTTPS only).
	SecureCookie bool
}

// Server is the web server.
type Server struct {
	ports     *Ports
	cfg       Config
	sessions  sessions.Store
	templates *templates
	router    *mux.Router

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates the server and registers its routes.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = domain.DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = domain.DefaultMaxUploadBytes
	}

	key := []byte(cfg.SecretKey)
	if len(key) == 0 {
		logger.Warn("no session secret configured, generating one; sessions end when the server restarts")
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		ports:     ports,
		cfg:       cfg,
		sessions:  store,
		templates: tmpl,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped: %v", err)
		}
	}()

	logger.Info("PDF-IQ listening on http://%s", listener.Addr())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}
