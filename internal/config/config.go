// Package config provides configuration loading for leaderlog.
//
// Configuration is assembled from hardcoded defaults, an optional YAML file,
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Insight providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds the complete leaderlog configuration.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Insights  InsightsConfig  `koanf:"insights"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// StorageConfig selects where the journal blob lives.
type StorageConfig struct {
	Backend string `koanf:"backend"` // "file" or "sqlite"
	Path    string `koanf:"path"`    // empty means the backend default under ~/.local/share/leaderlog
}

// InsightsConfig holds the text-generation service settings.
type InsightsConfig struct {
	Provider string   `koanf:"provider"`
	Model    string   `koanf:"model"`
	BaseURL  string   `koanf:"base_url"` // only used by the openai provider
	APIKey   Secret   `koanf:"api_key"`
	Timeout  Duration `koanf:"timeout"`

	// MinInterval spaces out consecutive requests from one process.
	MinInterval Duration `koanf:"min_interval"`

	// Journal text is scanned for credentials before it is sent out.
	DisableRedaction bool   `koanf:"disable_redaction"`
	Allowlist        string `koanf:"allowlist"` // TOML file of regexes exempt from redaction
}

// LoggingConfig holds the subset of logging settings exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig controls optional OTLP export of traces and metrics.
// Fields are flat so each one has an environment variable
// (LEADERLOG_TELEMETRY_SAMPLE_RATE and so on).
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // "grpc" or "http/protobuf"
	Insecure       bool     `koanf:"insecure"`
	SampleRate     float64  `koanf:"sample_rate"`
	MetricsEnabled bool     `koanf:"metrics_enabled"`
	LogsEnabled    bool     `koanf:"logs_enabled"`
	ExportInterval Duration `koanf:"export_interval"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
//
// Returns an error if:
//   - the storage backend is not file or sqlite
//   - the insights provider is not gemini or openai
//   - the insights timeout is not positive
//   - the insights min_interval is negative
//   - the log format is not json or console
//   - the telemetry protocol is not grpc or http/protobuf
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage backend: %q (must be %s or %s)", c.Storage.Backend, BackendFile, BackendSQLite)
	}

	switch c.Insights.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("invalid insights provider: %q (must be %s or %s)", c.Insights.Provider, ProviderGemini, ProviderOpenAI)
	}

	if c.Insights.Timeout.Duration() <= 0 {
		return errors.New("insights timeout must be positive")
	}
	if c.Insights.MinInterval.Duration() < 0 {
		return errors.New("insights min_interval must not be negative")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %q (must be json or console)", c.Logging.Format)
	}

	if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
		return fmt.Errorf("invalid telemetry protocol: %q (must be grpc or http/protobuf)", c.Telemetry.Protocol)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendFile
	}

	if cfg.Insights.Provider == "" {
		cfg.Insights.Provider = ProviderGemini
	}
	if cfg.Insights.Model == "" {
		switch cfg.Insights.Provider {
		case ProviderOpenAI:
			cfg.Insights.Model = "gpt-4o-mini"
		default:
			cfg.Insights.Model = "gemini-2.5-flash"
		}
	}
	if cfg.Insights.Timeout == 0 {
		cfg.Insights.Timeout = Duration(60 * time.Second)
	}
	if cfg.Insights.MinInterval == 0 {
		cfg.Insights.MinInterval = Duration(10 * time.Second)
	}
	// The credential may also come from the variables each provider's own
	// tooling reads, not only from LEADERLOG_INSIGHTS_API_KEY.
	if !cfg.Insights.APIKey.IsSet() {
		switch cfg.Insights.Provider {
		case ProviderOpenAI:
			cfg.Insights.APIKey = Secret(firstEnv("OPENAI_API_KEY"))
		default:
			cfg.Insights.APIKey = Secret(firstEnv("GEMINI_API_KEY", "API_KEY"))
		}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = Duration(15 * time.Second)
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
