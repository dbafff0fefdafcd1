package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kisanbazaar/kisan-bazaar/internal/advisory"
	"github.com/kisanbazaar/kisan-bazaar/internal/analytics"
	"github.com/kisanbazaar/kisan-bazaar/internal/catalog"
	"github.com/kisanbazaar/kisan-bazaar/internal/forum"
	"github.com/kisanbazaar/kisan-bazaar/internal/session"
	"github.com/kisanbazaar/kisan-bazaar/internal/storage"
	"github.com/kisanbazaar/kisan-bazaar/internal/weather"
)

// Server wires the dashboard services behind the JSON API.
type Server struct {
	catalog  *catalog.Service
	history  *analytics.HistoryEngine
	advisory *advisory.Engine
	weather  *weather.Provider
	forum    *forum.Service
	sessions *session.Manager
}

func New(
	cat *catalog.Service,
	history *analytics.HistoryEngine,
	adv *advisory.Engine,
	wx *weather.Provider,
	board *forum.Service,
	sessions *session.Manager,
) *Server {
	return &Server{
		catalog:  cat,
		history:  history,
		advisory: adv,
		weather:  wx,
		forum:    board,
		sessions: sessions,
	}
}

// Routes builds the full route table. Catalog mutations are admin-only;
// everything else under /api needs any logged-in session.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, withMetrics(pattern, h))
	}
	authed := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, withMetrics(pattern, s.requireSession(h)))
	}
	admin := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, withMetrics(pattern, s.requireAdmin(h)))
	}

	handle("POST /api/login", s.handleLogin)
	handle("POST /api/logout", s.handleLogout)
	handle("GET /api/session", s.handleSession)

	authed("GET /api/market", s.handleMarketList)
	admin("POST /api/market", s.handleMarketCreate)
	admin("PUT /api/market/{id}", s.handleMarketUpdate)
	admin("DELETE /api/market/{id}", s.handleMarketDelete)
	authed("GET /api/history", s.handleHistory)

	authed("GET /api/advice", s.handleAdvice)

	authed("GET /api/weather", s.handleWeatherList)
	authed("GET /api/weather/{city}", s.handleWeatherDetail)

	authed("GET /api/forum", s.handleForumList)
	authed("POST /api/forum", s.handleForumCreate)
	authed("PUT /api/forum/{id}", s.handleForumEdit)
	authed("DELETE /api/forum/{id}", s.handleForumDelete)
	authed("POST /api/forum/{id}/like", s.handleForumLikePost)
	authed("POST /api/forum/{id}/comments", s.handleForumAddComment)
	authed("DELETE /api/forum/{id}/comments/{commentID}", s.handleForumDeleteComment)
	authed("POST /api/forum/{id}/comments/{commentID}/like", s.handleForumLikeComment)

	handle("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metricsHandler())

	return mux
}

// writeJSON renders v with the given status. Nil slices render as empty
// arrays upstream; handlers pass concrete values.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service failures onto the API contract: unknown ids
// are 404, corrupt or unreachable state is 500, anything else is an input
// problem.
func writeServiceError(w http.ResponseWriter, err error) {
	var decodeErr *storage.DecodeError
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, forum.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &decodeErr), errors.Is(err, storage.ErrNotFound):
		slog.Error("Store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// writeLoadError is writeServiceError for read paths, where any failure is a
// server-side problem rather than bad input.
func writeLoadError(w http.ResponseWriter, err error) {
	slog.Error("Failed to load state", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
