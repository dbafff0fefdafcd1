package server

import (
	"errors"
	"net/http"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/session"
)

// requireSession rejects requests with no logged-in user.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.currentSession(w, r); err != nil {
			return
		}
		next(w, r)
	}
}

// requireAdmin additionally checks the stored role.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.currentSession(w, r)
		if err != nil {
			return
		}
		if sess.Role != models.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	}
}

// currentSession resolves the session, writing the error response itself so
// middleware callers only need the happy path.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (models.Session, error) {
	sess, err := s.sessions.Current(r.Context())
	if errors.Is(err, session.ErrNoSession) {
		writeError(w, http.StatusUnauthorized, "login required")
		return models.Session{}, err
	}
	if err != nil {
		writeLoadError(w, err)
		return models.Session{}, err
	}
	return sess, nil
}
