package server

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"npsbridge/internal/config"
)

// SetupLogging configures the global zerolog logger from cfg. Handlers that
// run without the request id middleware fall back to the global logger.
func SetupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	zerolog.DefaultContextLogger = &log.Logger

	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
	}
}
