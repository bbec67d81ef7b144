// Package server exposes the query and catalog APIs over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"courserag/internal/model"
	"courserag/internal/protocol"
	"courserag/internal/rag"
)

// Options for running the API server.
type Options struct {
	// StaticDir, when set, is served at / for the bundled web frontend.
	StaticDir string
}

type Server struct {
	system *rag.System
	opts   Options
	logger *slog.Logger
}

func New(system *rag.System, opts Options) *Server {
	return &Server{
		system: system,
		opts:   opts,
		logger: slog.Default().With("component", "server"),
	}
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type queryResponse struct {
	Answer    string         `json:"answer"`
	Sources   []model.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler builds the route table. Exposed separately from Serve so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+protocol.QueryPath, s.handleQuery)
	mux.HandleFunc("GET "+protocol.CoursesPath, s.handleCourses)
	if s.opts.StaticDir != "" {
		mux.Handle("/", noCache(http.FileServer(http.Dir(s.opts.StaticDir))))
	}
	return mux
}

// Serve blocks while handling HTTP. Cancel ctx to initiate graceful shutdown;
// in-flight requests are allowed to drain.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Tool-calling exchanges may take several model round-trips.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = r.Header.Get(protocol.SessionHeader)
	}
	if sessionID == "" {
		sessionID = s.system.CreateSession()
	}

	answer, sources := s.system.Query(r.Context(), req.Query, sessionID)
	if sources == nil {
		sources = []model.Source{}
	}
	s.logger.Info("query answered", "session", sessionID, "sources", len(sources))
	writeJSON(w, http.StatusOK, queryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.system.Analytics(r.Context())
	if err != nil {
		s.logger.Error("course analytics failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load course catalog"})
		return
	}
	if analytics.CourseTitles == nil {
		analytics.CourseTitles = []string{}
	}
	writeJSON(w, http.StatusOK, analytics)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// noCache disables browser caching so frontend edits show up on reload.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
