package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temp dir and clears every credential variable.
func setupTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY",
		"LEADERLOG_STORAGE_BACKEND", "LEADERLOG_STORAGE_PATH", "LEADERLOG_INSIGHTS_PROVIDER",
		"LEADERLOG_INSIGHTS_MODEL", "LEADERLOG_INSIGHTS_API_KEY", "LEADERLOG_INSIGHTS_TIMEOUT",
		"LEADERLOG_LOGGING_LEVEL", "LEADERLOG_LOGGING_FORMAT",
		"LEADERLOG_TELEMETRY_ENABLED", "LEADERLOG_TELEMETRY_ENDPOINT", "LEADERLOG_TELEMETRY_SAMPLE_RATE"} {
		// Setenv registers the restore; the variable itself must be absent
		// because koanf's env provider also loads empty values.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return home
}

func writeConfig(t *testing.T, home, content string, perm os.FileMode) string {
	t.Helper()

	dir := filepath.Join(home, ".config", "leaderlog")
	require.NoError(t, os.MkdirAll(dir, 0700))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoadWithFile_Defaults(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, ProviderGemini, cfg.Insights.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Insights.Model)
	assert.Equal(t, 60*time.Second, cfg.Insights.Timeout.Duration())
	assert.Equal(t, 10*time.Second, cfg.Insights.MinInterval.Duration())
	assert.False(t, cfg.Insights.APIKey.IsSet(), "missing credential is a valid state")
	assert.False(t, cfg.Insights.DisableRedaction)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, "grpc", cfg.Telemetry.Protocol)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.Equal(t, 15*time.Second, cfg.Telemetry.ExportInterval.Duration())
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	home := setupTestHome(t)
	path := writeConfig(t, home, `storage:
  backend: sqlite
  path: /tmp/journal.db
insights:
  provider: openai
  base_url: http://localhost:11434/v1
  timeout: 15s
logging:
  level: debug
  format: json
`, 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/journal.db", cfg.Storage.Path)
	assert.Equal(t, ProviderOpenAI, cfg.Insights.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Insights.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Insights.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Insights.Timeout.Duration())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	home := setupTestHome(t)
	path := writeConfig(t, home, "storage:\n  backend: sqlite\n", 0600)

	t.Setenv("LEADERLOG_STORAGE_BACKEND", "file")
	t.Setenv("LEADERLOG_INSIGHTS_TIMEOUT", "5s")
	t.Setenv("LEADERLOG_INSIGHTS_API_KEY", "from-env")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 5*time.Second, cfg.Insights.Timeout.Duration())
	assert.Equal(t, "from-env", cfg.Insights.APIKey.Value())
}

func TestLoadWithFile_CredentialFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		env      map[string]string
		want     string
	}{
		{name: "gemini key", env: map[string]string{"GEMINI_API_KEY": "g"}, want: "g"},
		{name: "generic api key", env: map[string]string{"API_KEY": "a"}, want: "a"},
		{name: "gemini wins over generic", env: map[string]string{"GEMINI_API_KEY": "g", "API_KEY": "a"}, want: "g"},
		{name: "openai key", provider: ProviderOpenAI, env: map[string]string{"OPENAI_API_KEY": "o", "GEMINI_API_KEY": "g"}, want: "o"},
		{name: "none", env: map[string]string{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestHome(t)
			if tt.provider != "" {
				t.Setenv("LEADERLOG_INSIGHTS_PROVIDER", tt.provider)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadWithFile("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Insights.APIKey.Value())
		})
	}
}

func TestLoadWithFile_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}
	home := setupTestHome(t)
	path := writeConfig(t, home, "storage:\n  backend: file\n", 0644)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoadWithFile_PathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path validation failed")
}

func TestLoadWithFile_InvalidBackend(t *testing.T) {
	setupTestHome(t)
	t.Setenv("LEADERLOG_STORAGE_BACKEND", "localstorage")

	_, err := LoadWithFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"LEADERLOG_STORAGE_BACKEND":       "storage.backend",
		"LEADERLOG_INSIGHTS_API_KEY":      "insights.api_key",
		"LEADERLOG_INSIGHTS_BASE_URL":     "insights.base_url",
		"LEADERLOG_TELEMETRY_SAMPLE_RATE": "telemetry.sample_rate",
		"LEADERLOG_VERBOSE":               "verbose",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad provider", mutate: func(c *Config) { c.Insights.Provider = "claude" }, wantErr: "invalid insights provider"},
		{name: "zero timeout", mutate: func(c *Config) { c.Insights.Timeout = 0 }, wantErr: "timeout must be positive"},
		{name: "negative min interval", mutate: func(c *Config) { c.Insights.MinInterval = Duration(-time.Second) }, wantErr: "min_interval must not be negative"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid log format"},
		{name: "bad telemetry protocol", mutate: func(c *Config) { c.Telemetry.Protocol = "udp" }, wantErr: "invalid telemetry protocol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "")
			t.Setenv("API_KEY", "")
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
