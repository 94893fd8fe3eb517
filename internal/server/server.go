// Package server exposes the HTTP surface: room snapshot, websocket
// transport, match-result history, and the embedded static client.
package server

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hangman/internal/session"
	"hangman/internal/storage"
)

// Server is the HTTP server.
type Server struct {
	router   chi.Router
	registry *session.Registry
	store    *storage.Store
	webFS    fs.FS
}

// New creates a server with all routes. webFS should be the "web"
// subdirectory of the embedded filesystem.
func New(registry *session.Registry, store *storage.Store, webFS fs.FS) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		registry: registry,
		store:    store,
		webFS:    webFS,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/rooms/{key}", s.handleGetRoom)
	s.router.Get("/api/rooms/{key}/ws", s.handleWebSocket)
	s.router.Get("/api/results", s.handleResults)
	s.router.Handle("/*", http.FileServer(http.FS(s.webFS)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	sess := s.registry.Get(chi.URLParam(r, "key"))
	writeJSON(w, http.StatusOK, sess.LobbyView())
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	rows, err := s.store.ListResults(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list results"})
		return
	}
	if rows == nil {
		rows = []storage.ResultRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
