// Package config loads the CertiPro CLI configuration: a YAML file under the
// CertiPro home directory, an optional .env file, and environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/certipro/internal/errors"
	"github.com/felixgeelhaar/certipro/internal/log"
)

// Environment variables recognised by Load.
const (
	EnvAPIURL    = "CERTIPRO_API_URL"
	EnvHome      = "CERTIPRO_HOME"
	EnvLogLevel  = "CERTIPRO_LOG_LEVEL"
	EnvLogStdout = "CERTIPRO_LOG_STDOUT"
)

// DefaultBaseURL is the API root used when nothing else is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Config represents the CertiPro CLI configuration
type Config struct {
	API      APIConfig       `yaml:"api"`
	Storage  StorageKeys     `yaml:"storage"`
	Session  SessionConfig   `yaml:"session"`
	Defaults CommandDefaults `yaml:"defaults,omitempty"`
	Logging  LoggingConfig   `yaml:"logging,omitempty"`
}

type APIConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent,omitempty"`
}

// StorageKeys names the entries kept in the durable session store and in the
// pending verification store.
type StorageKeys struct {
	Token            string `yaml:"token"`
	User             string `yaml:"user"`
	AccountType      string `yaml:"account_type"`
	PendingEmail     string `yaml:"pending_email"`
	VerificationType string `yaml:"verification_type"`
	ResetCode        string `yaml:"reset_code"`
}

type SessionConfig struct {
	TokenCheckInterval time.Duration `yaml:"token_check_interval"`
	ResetCodeTTL       time.Duration `yaml:"reset_code_ttl"`
}

type CommandDefaults struct {
	Format  string `yaml:"format,omitempty"` // "text", "json", "yaml"
	NoColor bool   `yaml:"no_color,omitempty"`
}

type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`  // "debug", "info", "warn", "error"
	Format     string `yaml:"format,omitempty"` // "json" or "text"
	EnableFile bool   `yaml:"enable_file,omitempty"`
	LogDir     string `yaml:"log_dir,omitempty"` // Default <home>/logs
}

// Default returns the configuration written on first use.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Storage: StorageKeys{
			Token:            "certipro_token",
			User:             "certipro_user",
			AccountType:      "certipro_account_type",
			PendingEmail:     "pendingVerificationEmail",
			VerificationType: "verificationType",
			ResetCode:        "resetCode",
		},
		Session: SessionConfig{
			TokenCheckInterval: 60 * time.Second,
			ResetCodeTTL:       15 * time.Minute,
		},
		Defaults: CommandDefaults{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			EnableFile: true,
		},
	}
}

// Home returns the CertiPro home directory: $CERTIPRO_HOME or ~/.certipro.
func Home() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".certipro"), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// SessionPath returns the file backing the durable session.
func SessionPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "session.json"), nil
}

// PendingPath returns the file backing the pending verification store. It
// lives in the temp directory so it does not outlive the machine session.
func PendingPath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("certipro-%d", os.Getuid()), "pending.json")
}

// LogDir resolves the log directory, expanding a leading "~".
func (c *Config) LogDir() (string, error) {
	if c.Logging.LogDir == "" {
		home, err := Home()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "logs"), nil
	}
	if strings.HasPrefix(c.Logging.LogDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.Logging.LogDir[2:]), nil
	}
	return c.Logging.LogDir, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) without overriding variables already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration at path, creating it with defaults when it
// does not exist, then applies environment overrides and validates the
// result. An empty path means the default location.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read returns the file contents over the defaults, creating the file when
// missing. Environment overrides are not applied and nothing is validated,
// so `config set` can repair a broken file without persisting the
// environment.
func Read(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := Save(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, 0, "failed to read config", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewFileUnmarshalError(path, "YAML", err)
		}
	}
	return cfg, nil
}

// Save writes the configuration to path with owner-only permissions.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, 0, "failed to write config", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the base URL, the storage key names, and the session
// intervals.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.NewConfigInvalidError(fmt.Sprintf("api.base_url %q must be an absolute http(s) URL", c.API.BaseURL))
	}

	keys := map[string]string{
		"storage.token":             c.Storage.Token,
		"storage.user":              c.Storage.User,
		"storage.account_type":      c.Storage.AccountType,
		"storage.pending_email":     c.Storage.PendingEmail,
		"storage.verification_type": c.Storage.VerificationType,
		"storage.reset_code":        c.Storage.ResetCode,
	}
	seen := make(map[string]string, len(keys))
	for name, value := range keys {
		if value == "" {
			return errors.NewConfigInvalidError(name + " must not be empty")
		}
		if other, dup := seen[value]; dup {
			return errors.NewConfigInvalidError(fmt.Sprintf("%s and %s share the key %q", name, other, value))
		}
		seen[value] = name
	}

	if c.Session.TokenCheckInterval <= 0 {
		return errors.NewConfigInvalidError("session.token_check_interval must be positive")
	}
	if c.Session.ResetCodeTTL <= 0 {
		return errors.NewConfigInvalidError("session.reset_code_ttl must be positive")
	}
	if _, ok := log.LookupLevel(c.Logging.Level); !ok && c.Logging.Level != "" {
		return errors.NewConfigInvalidError(fmt.Sprintf("logging.level %q is not a log level", c.Logging.Level))
	}
	if _, ok := log.LookupFormat(c.Logging.Format); !ok && c.Logging.Format != "" {
		return errors.NewConfigInvalidError(fmt.Sprintf("logging.format %q must be json or text", c.Logging.Format))
	}
	return nil
}

// Get returns a configuration value using dot notation.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api.base_url":
		return c.API.BaseURL, nil
	case "api.user_agent":
		return c.API.UserAgent, nil
	case "session.token_check_interval":
		return c.Session.TokenCheckInterval.String(), nil
	case "session.reset_code_ttl":
		return c.Session.ResetCodeTTL.String(), nil
	case "defaults.format":
		return c.Defaults.Format, nil
	case "defaults.no_color":
		return strconv.FormatBool(c.Defaults.NoColor), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "logging.enable_file":
		return strconv.FormatBool(c.Logging.EnableFile), nil
	case "logging.log_dir":
		return c.Logging.LogDir, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set assigns a configuration value using dot notation. The result is not
// validated; callers run Validate before saving.
func (c *Config) Set(key, value string) error {
	switch key {
	case "api.base_url":
		c.API.BaseURL = value
	case "api.user_agent":
		c.API.UserAgent = value
	case "session.token_check_interval", "session.reset_code_ttl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		if key == "session.token_check_interval" {
			c.Session.TokenCheckInterval = d
		} else {
			c.Session.ResetCodeTTL = d
		}
	case "defaults.format":
		switch value {
		case "text", "json", "yaml":
			c.Defaults.Format = value
		default:
			return fmt.Errorf("invalid format %q (valid: text, json, yaml)", value)
		}
	case "defaults.no_color", "logging.enable_file":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", value, err)
		}
		if key == "defaults.no_color" {
			c.Defaults.NoColor = b
		} else {
			c.Logging.EnableFile = b
		}
	case "logging.level":
		if _, ok := log.LookupLevel(value); !ok {
			return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", value)
		}
		c.Logging.Level = value
	case "logging.format":
		if _, ok := log.LookupFormat(value); !ok {
			return fmt.Errorf("invalid log format %q (valid: json, text)", value)
		}
		c.Logging.Format = value
	case "logging.log_dir":
		c.Logging.LogDir = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
