// Package server provides HTTP server setup, routing, and middleware.
package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/rs/zerolog/log"

	"npsbridge/internal/config"
	"npsbridge/internal/nps"
)

// SurveyPath is where the survey endpoint is mounted. It matches the path
// the serverless deployment exposes.
const SurveyPath = "/api/nps"

// Server holds the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	survey http.Handler
	router *http.ServeMux
}

// New creates a new Server with all routes configured. The survey endpoint
// talks to the Zendesk account described by cfg.
func New(cfg *config.Config) *Server {
	return NewWithSurvey(cfg, nps.NewZendeskHandler(cfg))
}

// NewWithSurvey creates a Server that mounts survey at SurveyPath.
func NewWithSurvey(cfg *config.Config, survey http.Handler) *Server {
	s := &Server{
		cfg:    cfg,
		survey: survey,
		router: http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// No method in the pattern: the survey handler answers preflight and
	// rejects other methods itself, with CORS headers.
	s.router.Handle(SurveyPath, s.survey)

	s.router.HandleFunc("GET /healthz", handleHealth)

	if s.cfg.EnablePprof {
		log.Info().Msg("Pprof enabled")
		s.router.HandleFunc("/debug/pprof/", pprof.Index)
		s.router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		s.router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		s.router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		s.router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	if s.cfg.HttpLogging {
		h = LoggingMiddleware(h)
	}
	return RequestIDMiddleware(RecoveryMiddleware(h))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	log.Info().
		Str("listen_addr", s.cfg.ListenAddr).
		Strs("allowed_origins", s.cfg.AllowedOrigins).
		Bool("http_logging", s.cfg.HttpLogging).
		Msg("Starting server")

	return http.ListenAndServe(s.cfg.ListenAddr, s.Handler())
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
