// Package handler holds the serverless function entrypoints.
package handler

import (
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"npsbridge/internal/config"
	"npsbridge/internal/server"
)

var (
	initOnce sync.Once
	router   http.Handler
)

// Handler is the Vercel serverless function entrypoint for /api/nps.
// Configuration is read once per process.
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() { router = newRouter() })
	router.ServeHTTP(w, r)
}

// newRouter builds the shared router from the environment. When the
// configuration cannot be loaded the router still answers preflight and
// origin/method checks, but without credentials, so survey posts get
// server_misconfigured.
func newRouter() http.Handler {
	cfg, err := config.Load("")
	if err != nil {
		cfg = &config.Config{
			HttpLogging:    true,
			LogLevel:       "info",
			LogFormat:      "console",
			MaxBodyBytes:   config.DefaultMaxBodyBytes,
			AllowedOrigins: config.ParseOrigins(os.Getenv("ALLOWED_ORIGIN")),
		}
		server.SetupLogging(cfg)
		log.Error().Err(err).Msg("Config error, survey requests will fail with server_misconfigured")
		return server.New(cfg).Handler()
	}
	server.SetupLogging(cfg)
	return server.New(cfg).Handler()
}
