// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the configuration for the dashboard server and the
// startup data pipeline.
type Config struct {
	// Source URIs. Plain paths are local; s3://, gs:// and az:// are remote.
	// Empty URIs default to the standard file names under DataDir.
	DataDir         string `env:"DATA_DIR" envDefault:"data"`
	DemographicsURI string `env:"DEMOGRAPHICS_URI"`
	EconomicURI     string `env:"ECONOMIC_URI"`
	SpendingURI     string `env:"SPENDING_URI"`

	// Year columns read from the wide spending source (inclusive).
	SpendingYearFrom int `env:"SPENDING_YEAR_FROM" envDefault:"2000"`
	SpendingYearTo   int `env:"SPENDING_YEAR_TO"   envDefault:"2019"`

	// IndicatorsFile optionally overrides the built-in plottable indicator
	// allow-list (YAML).
	IndicatorsFile string `env:"INDICATORS_FILE"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LOG_LEVEL"   envDefault:"info"` // debug, info, warn, error
	Env        string `env:"ENV"         envDefault:"development"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"200"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// S3 fields are optional; s3:// sources are only readable when all of
	// KeyID, Secret, Endpoint and Region are set.
	S3KeyID       string `env:"KEY_ID"`
	S3Secret      string `env:"SECRET"`
	S3Endpoint    string `env:"ENDPOINT"`
	S3Region      string `env:"REGION"`
	S3VirtualHost bool   `env:"S3_VIRTUAL_HOST"`

	GCSKeyFile string `env:"GCS_KEY_FILE"`

	AzureAccountName string `env:"AZURE_ACCOUNT_NAME"`
	AzureAccountKey  string `env:"AZURE_ACCOUNT_KEY"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// HasS3Config returns true if all required S3 fields are set.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != "" && c.S3Secret != "" && c.S3Endpoint != "" && c.S3Region != ""
}

// HasGCSConfig returns true if a GCS service account key file is set.
func (c *Config) HasGCSConfig() bool {
	return c.GCSKeyFile != ""
}

// HasAzureConfig returns true if Azure shared-key credentials are set.
func (c *Config) HasAzureConfig() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// Default source file names under DataDir.
const (
	DemographicsFile = "demographics.csv"
	EconomicFile     = "economic.csv"
	SpendingFile     = "governmentspending.csv"
)

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DemographicsURI == "" {
		cfg.DemographicsURI = filepath.Join(cfg.DataDir, DemographicsFile)
	}
	if cfg.EconomicURI == "" {
		cfg.EconomicURI = filepath.Join(cfg.DataDir, EconomicFile)
	}
	if cfg.SpendingURI == "" {
		cfg.SpendingURI = filepath.Join(cfg.DataDir, SpendingFile)
	}
	for i := range cfg.CORSAllowedOrigins {
		cfg.CORSAllowedOrigins[i] = strings.TrimSpace(cfg.CORSAllowedOrigins[i])
	}
	cfg.CORSAllowedOrigins = compactNonEmpty(cfg.CORSAllowedOrigins)
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if cfg.SpendingYearFrom > cfg.SpendingYearTo {
		return nil, fmt.Errorf("SPENDING_YEAR_FROM (%d) is after SPENDING_YEAR_TO (%d)",
			cfg.SpendingYearFrom, cfg.SpendingYearTo)
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.Warnings = append(cfg.Warnings, "RATE_LIMIT_RPS must be positive, using 100")
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.Warnings = append(cfg.Warnings, "RATE_LIMIT_BURST must be positive, using 200")
		cfg.RateLimitBurst = 200
	}
	if (cfg.S3KeyID != "" || cfg.S3Secret != "") && !cfg.HasS3Config() {
		cfg.Warnings = append(cfg.Warnings, "partial S3 config: s3:// sources need KEY_ID, SECRET, ENDPOINT and REGION")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Env vars take precedence over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
