// Package config handles configuration loading from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMaxBodyBytes caps the inbound survey body.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config holds all application configuration. It is loaded once at process
// start and never mutated afterwards.
type Config struct {
	// ListenAddr is the address:port the server listens on.
	ListenAddr string

	// HttpLogging enables the access log middleware.
	HttpLogging bool

	// EnablePprof mounts the /debug/pprof handlers.
	EnablePprof bool

	// LogLevel is a zerolog level name ("debug", "info", ...).
	LogLevel string

	// LogFormat is "console" for human-readable output or "json".
	LogFormat string

	// MaxBodyBytes limits how much of the request body is read.
	MaxBodyBytes int64

	Zendesk Zendesk

	// AllowedOrigins is the parsed CORS allow-list.
	AllowedOrigins []string
}

// Zendesk holds the credentials and ticket field ids for the Zendesk API.
type Zendesk struct {
	Subdomain string
	Email     string
	APIToken  string

	// BaseURL overrides https://{Subdomain}.zendesk.com when set.
	BaseURL string

	// Custom field ids. Nil means the field is not configured; any set
	// value, zero included, is sent.
	NPSFieldID     *int64
	WhyFieldID     *int64
	ImproveFieldID *int64
}

// HasCredentials reports whether subdomain, email and token are all set.
func (z Zendesk) HasCredentials() bool {
	return z.Subdomain != "" && z.Email != "" && z.APIToken != ""
}

// URL returns the API root for the configured account.
func (z Zendesk) URL() string {
	if z.BaseURL != "" {
		return strings.TrimRight(z.BaseURL, "/")
	}
	return "https://" + z.Subdomain + ".zendesk.com"
}

type configFile struct {
	Server struct {
		ListenAddr   string `yaml:"listen_addr"`
		HttpLogging  *bool  `yaml:"http_logging"`
		EnablePprof  *bool  `yaml:"enable_pprof"`
		LogLevel     string `yaml:"log_level"`
		LogFormat    string `yaml:"log_format"`
		MaxBodyBytes int64  `yaml:"max_body_bytes"`
	} `yaml:"server"`
	Zendesk struct {
		Subdomain string `yaml:"subdomain"`
		Email     string `yaml:"email"`
		APIToken  string `yaml:"api_token"`
		BaseURL   string `yaml:"base_url"`
		Fields    struct {
			NPS     *int64 `yaml:"nps"`
			Why     *int64 `yaml:"why"`
			Improve *int64 `yaml:"improve"`
		} `yaml:"fields"`
	} `yaml:"zendesk"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty and the file exists) and environment variables, in
// that order of precedence. An empty path falls back to CONFIG_FILE.
//
// Missing Zendesk credentials are not an error here; requests are refused
// at handling time instead.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr:   ":8080",
		HttpLogging:  true,
		LogLevel:     "info",
		LogFormat:    "console",
		MaxBodyBytes: DefaultMaxBodyBytes,
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.HttpLogging = getEnvBool("HTTP_LOGGING", cfg.HttpLogging)
	cfg.EnablePprof = getEnvBool("ENABLE_PPROF", cfg.EnablePprof)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	maxBody, err := getEnvInt("MAX_BODY_BYTES", cfg.MaxBodyBytes)
	if err != nil {
		return nil, err
	}
	cfg.MaxBodyBytes = maxBody

	z := &cfg.Zendesk
	z.Subdomain = getEnv("ZENDESK_SUBDOMAIN", z.Subdomain)
	z.Email = getEnv("ZENDESK_EMAIL", z.Email)
	z.APIToken = getEnv("ZENDESK_API_TOKEN", z.APIToken)
	z.BaseURL = getEnv("ZENDESK_BASE_URL", z.BaseURL)

	var errs []error
	if z.NPSFieldID, err = getEnvFieldID("NPS_FIELD_ID", z.NPSFieldID); err != nil {
		errs = append(errs, err)
	}
	if z.WhyFieldID, err = getEnvFieldID("WHY_FIELD_ID", z.WhyFieldID); err != nil {
		errs = append(errs, err)
	}
	if z.ImproveFieldID, err = getEnvFieldID("IMPROVE_FIELD_ID", z.ImproveFieldID); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if raw, ok := os.LookupEnv("ALLOWED_ORIGIN"); ok {
		cfg.AllowedOrigins = ParseOrigins(raw)
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.Server.ListenAddr != "" {
		c.ListenAddr = f.Server.ListenAddr
	}
	if f.Server.HttpLogging != nil {
		c.HttpLogging = *f.Server.HttpLogging
	}
	if f.Server.EnablePprof != nil {
		c.EnablePprof = *f.Server.EnablePprof
	}
	if f.Server.LogLevel != "" {
		c.LogLevel = f.Server.LogLevel
	}
	if f.Server.LogFormat != "" {
		c.LogFormat = f.Server.LogFormat
	}
	if f.Server.MaxBodyBytes > 0 {
		c.MaxBodyBytes = f.Server.MaxBodyBytes
	}

	c.Zendesk = Zendesk{
		Subdomain:      f.Zendesk.Subdomain,
		Email:          f.Zendesk.Email,
		APIToken:       f.Zendesk.APIToken,
		BaseURL:        f.Zendesk.BaseURL,
		NPSFieldID:     f.Zendesk.Fields.NPS,
		WhyFieldID:     f.Zendesk.Fields.Why,
		ImproveFieldID: f.Zendesk.Fields.Improve,
	}
	c.AllowedOrigins = trimNonEmpty(f.CORS.AllowedOrigins)
	return nil
}

// ParseOrigins splits a comma-separated origin list, trimming whitespace
// and dropping empty entries.
func ParseOrigins(raw string) []string {
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer: %q", key, raw)
	}
	return v, nil
}

// getEnvFieldID is getEnvInt for optional ids: unset or blank keeps
// defaultValue, anything else (including "0") is parsed and marked set.
func getEnvFieldID(key string, defaultValue *int64) (*int64, error) {
	if strings.TrimSpace(os.Getenv(key)) == "" {
		return defaultValue, nil
	}
	v, err := getEnvInt(key, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
