package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Session cookie layout.
const (
	sessionName   = "pdfiq"
	sessionMaxAge = 30 * 24 * 60 * 60

	keySessionID = "session_id"
	keyAdmin     = "admin"
)

// session loads the signed cookie session. A tampered or expired cookie
// yields a fresh session.
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		logger.Debug("discarding unreadable session cookie: %v", err)
	}
	return sess
}

// sessionID returns the caller's conversation ID, creating and saving
// one on first use.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	sess := s.session(r)
	if id, ok := sess.Values[keySessionID].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	sess.Values[keySessionID] = id
	s.save(w, r, sess)
	return id
}

// existingSessionID returns the conversation ID without creating one.
func (s *Server) existingSessionID(r *http.Request) string {
	id, _ := s.session(r).Values[keySessionID].(string)
	return id
}

func (s *Server) isAdmin(r *http.Request) bool {
	admin, _ := s.session(r).Values[keyAdmin].(bool)
	return admin
}

// flash queues a message for the next rendered page.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, msg string) {
	sess := s.session(r)
	sess.AddFlash(msg)
	s.save(w, r, sess)
}

// flashes pops queued messages.
func (s *Server) flashes(w http.ResponseWriter, r *http.Request) []string {
	sess := s.session(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	s.save(w, r, sess)

	msgs := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		logger.Warn("save session: %v", err)
	}
}
