package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/certipro/internal/errors"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "certipro_token", cfg.Storage.Token)
	assert.Equal(t, 60*time.Second, cfg.Session.TokenCheckInterval)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadReadsExistingFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `api:
  base_url: https://api.certipro.example/api
storage:
  token: tok
  user: usr
  account_type: acct
  pending_email: pending
  verification_type: vtype
  reset_code: code
session:
  token_check_interval: 30s
  reset_code_ttl: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.certipro.example/api", cfg.API.BaseURL)
	assert.Equal(t, "tok", cfg.Storage.Token)
	assert.Equal(t, 30*time.Second, cfg.Session.TokenCheckInterval)
	assert.Equal(t, 5*time.Minute, cfg.Session.ResetCodeTTL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://staging.certipro.example/api")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://staging.certipro.example/api", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestReadSkipsEnvAndValidation(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://staging.certipro.example/api")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: not-a-url\n"), 0600))

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "not-a-url", cfg.API.BaseURL)

	_, err = Load(path)
	require.NoError(t, err, "the environment override makes the loaded config valid")

	t.Setenv(EnvAPIURL, "")
	_, err = Load(path)
	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConfigInvalid, reqErr.Code)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	reqErr, ok := errors.AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFileUnmarshal, reqErr.Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }, true},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://example.com" }, true},
		{"empty key", func(c *Config) { c.Storage.User = "" }, true},
		{"duplicate key", func(c *Config) { c.Storage.User = c.Storage.Token }, true},
		{"zero interval", func(c *Config) { c.Session.TokenCheckInterval = 0 }, true},
		{"negative ttl", func(c *Config) { c.Session.ResetCodeTTL = -time.Second }, true},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"warning alias", func(c *Config) { c.Logging.Level = "WARNING" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			reqErr, ok := errors.AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeConfigInvalid, reqErr.Code)
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("api.base_url", "https://example.com/api"))
	require.NoError(t, cfg.Set("session.reset_code_ttl", "10m"))
	require.NoError(t, cfg.Set("defaults.no_color", "true"))
	require.NoError(t, cfg.Set("defaults.format", "json"))
	require.NoError(t, cfg.Set("logging.level", "debug"))
	require.NoError(t, cfg.Set("logging.format", "text"))

	for key, want := range map[string]string{
		"api.base_url":           "https://example.com/api",
		"session.reset_code_ttl": "10m0s",
		"defaults.no_color":      "true",
		"defaults.format":        "json",
		"logging.level":          "debug",
		"logging.format":         "text",
	} {
		got, err := cfg.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}

	assert.Error(t, cfg.Set("defaults.format", "xml"))
	assert.Error(t, cfg.Set("session.reset_code_ttl", "soon"))
	assert.Error(t, cfg.Set("logging.level", "loud"))
	assert.Error(t, cfg.Set("logging.format", "xml"))
	assert.Error(t, cfg.Set("unknown.key", "x"))
	_, err := cfg.Get("unknown.key")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Session.ResetCodeTTL = 20 * time.Minute

	require.NoError(t, Save(cfg, path))

	t.Setenv(EnvAPIURL, "")
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLogDir(t *testing.T) {
	t.Setenv(EnvHome, "/tmp/certipro-home")
	cfg := Default()

	dir, err := cfg.LogDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/certipro-home", "logs"), dir)

	cfg.Logging.LogDir = "/var/log/certipro"
	dir, err = cfg.LogDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/certipro", dir)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CERTIPRO_DOTENV_PROBE=from-file\n"), 0600))
	t.Setenv("CERTIPRO_DOTENV_PROBE", "")
	os.Unsetenv("CERTIPRO_DOTENV_PROBE")

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("CERTIPRO_DOTENV_PROBE"))
}

func TestDefaultPagesAllowList(t *testing.T) {
	pages := DefaultPages()
	assert.Equal(t, "index.html", pages.Login)
	assert.Equal(t, []string{"index.html", "signup", "verify", "forgot", "set_pswd"}, pages.AllowList)
}
