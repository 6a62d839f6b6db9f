// Package httpapi exposes the search lane over HTTP: a single
// GET /search/{query} route plus a health check, per spec.md §6.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/beaconfind/beaconfind/internal/searcher"
)

// Server is the HTTP front end for the searcher lane (§5: "a searcher
// lane: the search entry point is called from the external query layer").
type Server struct {
	searcher *searcher.Searcher
	logger   *zap.Logger
	port     int
	server   *http.Server
}

// New builds a Server bound to port, answering queries through s.
func New(s *searcher.Searcher, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{searcher: s, logger: logger, port: port}
}

// Router builds the chi router. Exported so tests can drive it directly
// without binding a listener.
func (srv *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.AllowAll().Handler)

	r.Get("/search/{query}", srv.handleSearch)
	r.Get("/health", srv.handleHealth)
	return r
}

// Start blocks serving HTTP until the listener errors or Stop shuts it
// down, in which case it returns http.ErrServerClosed.
func (srv *Server) Start() error {
	srv.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", srv.port),
		Handler: srv.Router(),
	}
	srv.logger.Info("starting search server", zap.Int("port", srv.port))
	return srv.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (srv *Server) Stop(ctx context.Context) error {
	if srv.server == nil {
		return nil
	}
	return srv.server.Shutdown(ctx)
}

func (srv *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	results := srv.searcher.Search(query)
	srv.respondJSON(w, http.StatusOK, results)
}

func (srv *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	srv.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (srv *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
