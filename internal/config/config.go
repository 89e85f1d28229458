package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Catalog source kinds accepted by CATALOG_SOURCE.
const (
	CatalogStatic = "static"
	CatalogHTTP   = "http"
	CatalogFile   = "file"
)

// Config struct for environment variables.
type Config struct {
	CatalogSource string `envconfig:"CATALOG_SOURCE" default:"static"`
	CatalogURL    string `envconfig:"CATALOG_URL"`
	CatalogFile   string `envconfig:"CATALOG_FILE"`

	LogLevel          string `envconfig:"LOG_LEVEL" default:"INFO"`
	DiscordWebhookURL string `envconfig:"DISCORD_WEBHOOK_URL"`
	DBPath            string `envconfig:"DB_PATH" default:"films.db"`

	Web struct {
		BindAddress     string        `split_words:"true" default:"0.0.0.0:9091"`
		ReadTimeout     time.Duration `split_words:"true" default:"30s"`
		WriteTimeout    time.Duration `split_words:"true" default:"10m"`
		IdleTimeout     time.Duration `split_words:"true" default:"5s"`
		ShutdownTimeout time.Duration `split_words:"true" default:"30s"`
	}

	Telemetry struct {
		Enabled        bool   `split_words:"true" default:"true"`
		ServiceName    string `split_words:"true" default:"film_downloader"`
		OTLPEndpoint   string `envconfig:"OTLP_ENDPOINT"`
	}
}

// LoadConfig reads environment variables and populates the Config struct.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the selected catalog source has what it needs.
func (c *Config) Validate() error {
	switch strings.ToLower(c.CatalogSource) {
	case CatalogStatic:
	case CatalogHTTP:
		if c.CatalogURL == "" {
			return fmt.Errorf("CATALOG_URL is required for catalog source %q", c.CatalogSource)
		}
	case CatalogFile:
		if c.CatalogFile == "" {
			return fmt.Errorf("CATALOG_FILE is required for catalog source %q", c.CatalogSource)
		}
	default:
		return fmt.Errorf("invalid catalog source: %s", c.CatalogSource)
	}

	return nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
