// Package server exposes dependency analysis over a small HTTP API.
//
// Routes:
//
//	GET /healthz                 liveness probe
//	GET /api/analyze?package=X   analyze X and return the graph snapshot
//
// The analyze endpoint accepts optional "filter" and "version" query
// parameters mirroring the config file fields. Each request builds a
// fresh graph; no engine state is shared between requests.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/depscope/pkg/depgraph"
)

// SourceFactory builds a dependency source for one analysis request.
// The version hint applies to the root package being analyzed.
type SourceFactory func(pkg, version string) (depgraph.Source, error)

// Server handles analysis requests.
type Server struct {
	logger  *log.Logger
	sources SourceFactory
	router  chi.Router
}

// New creates a Server that obtains dependency sources from sources.
func New(logger *log.Logger, sources SourceFactory) *Server {
	s := &Server{logger: logger, sources: sources}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/analyze", s.handleAnalyze)
	s.router = r

	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	pkg := r.URL.Query().Get("package")
	if pkg == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required query parameter: package"})
		return
	}
	filter := r.URL.Query().Get("filter")
	version := r.URL.Query().Get("version")

	src, err := s.sources(pkg, version)
	if err != nil {
		s.logger.Errorf("source setup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	start := time.Now()
	g := depgraph.New(filter)
	g.BuildWithOptions(r.Context(), pkg, src, depgraph.BuildOptions{
		Warn: func(name string, err error) {
			s.logger.Debugf("fetch failed for %s: %v", name, err)
		},
	})

	snap := g.Export(pkg)
	s.logger.Infof("analyzed %s: %d packages, %d cycles (%s) [analysis %s]",
		pkg, len(snap.Nodes), len(snap.Cycles), time.Since(start).Round(time.Millisecond), snap.ID)

	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
