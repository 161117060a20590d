// NPS Bridge
//
// This is the main entry point for the NPS survey server. It exposes
// POST /api/nps, which records a Net Promoter Score submission on a
// Zendesk ticket as an internal note.
//
// Usage:
//
//	ZENDESK_SUBDOMAIN=acme ZENDESK_EMAIL=agent@acme.com ZENDESK_API_TOKEN=... \
//	ALLOWED_ORIGIN=https://acme.zendesk.com go run ./cmd/api
//
// Environment Variables:
//   - LISTEN_ADDR: Address to listen on (default: ":8080", or ":$PORT")
//   - CONFIG_FILE: Optional YAML config file
//   - ZENDESK_SUBDOMAIN, ZENDESK_EMAIL, ZENDESK_API_TOKEN: Zendesk credentials
//   - NPS_FIELD_ID, WHY_FIELD_ID, IMPROVE_FIELD_ID: Optional custom field ids
//   - ALLOWED_ORIGIN: Comma-separated list of allowed browser origins
//   - LOG_LEVEL, LOG_FORMAT, HTTP_LOGGING, ENABLE_PPROF, MAX_BODY_BYTES
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"npsbridge/internal/config"
	"npsbridge/internal/server"
)

func main() {
	flagSet := pflag.NewFlagSet("nps-bridge", pflag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "", "path to a YAML config file (default: $CONFIG_FILE)")
	listenAddr := flagSet.String("listen", "", "address to listen on, overrides LISTEN_ADDR")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	server.SetupLogging(cfg)

	if !cfg.Zendesk.HasCredentials() {
		log.Warn().Msg("ZENDESK_SUBDOMAIN, ZENDESK_EMAIL or ZENDESK_API_TOKEN is missing; survey requests will fail with server_misconfigured")
	}
	if len(cfg.AllowedOrigins) == 0 {
		log.Warn().Msg("ALLOWED_ORIGIN is empty; every survey request will be rejected")
	}

	srv := server.New(cfg)

	log.Fatal().Err(srv.ListenAndServe()).Msg("Server error")
}
