// Package config resolves WhisperWall settings from defaults, an optional
// YAML file, an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config validation errors
var (
	// ErrInvalidBaseURL is returned when APIBaseURL is not an absolute http(s) URL
	ErrInvalidBaseURL = errors.New("API_BASE_URL must be an absolute http or https URL")
	// ErrInvalidPageSize is returned when PostsPerPage is not positive
	ErrInvalidPageSize = errors.New("POSTS_PER_PAGE must be positive")
	// ErrInvalidMaxLength is returned when MaxPostLength is not positive
	ErrInvalidMaxLength = errors.New("MAX_POST_LENGTH must be positive")
	// ErrInvalidLogLevel is returned when LogLevel is not a slog level name
	ErrInvalidLogLevel = errors.New("LOG_LEVEL must be debug, info, warn or error")
	// ErrInvalidLogFormat is returned when LogFormat is neither text nor json
	ErrInvalidLogFormat = errors.New("LOG_FORMAT must be text or json")
)

// EnvConfigFile names the environment variable holding the YAML config path
const EnvConfigFile = "WHISPERWALL_CONFIG"

// Config holds the client settings.
type Config struct {
	// APIBaseURL is the service root, including the /api/v1 prefix.
	APIBaseURL string `yaml:"api_base_url"`

	// AppTitle is shown in the header and footer.
	AppTitle string `yaml:"app_title"`

	// LogLevel is a slog level name.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// LogFile receives logs in interactive mode. Empty discards all but errors.
	LogFile string `yaml:"log_file"`

	// PostsPerPage is the page size requested from the service.
	PostsPerPage int `yaml:"posts_per_page"`

	// MaxPostLength is the composer's advisory character ceiling.
	MaxPostLength int `yaml:"max_post_length"`

	// NoColor disables ANSI styling even on a terminal.
	NoColor bool `yaml:"no_color"`
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:    "http://localhost:8000/api/v1",
		AppTitle:      "WhisperWall",
		LogLevel:      "info",
		LogFormat:     "text",
		PostsPerPage:  20,
		MaxPostLength: 5000,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: got %q", ErrInvalidBaseURL, c.APIBaseURL)
	}
	if c.PostsPerPage <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.PostsPerPage)
	}
	if c.MaxPostLength <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxLength, c.MaxPostLength)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.LogFormat)
	}
	return nil
}

// SlogLevel parses LogLevel
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return level, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load resolves the configuration. Sources, lowest precedence first:
// defaults, the YAML file at configPath (or $WHISPERWALL_CONFIG), the
// dotenv file at envFile, then the process environment. Missing envFile
// is not an error; a missing configPath is.
//
// The result is not validated; flags may still override it.
func Load(configPath, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		configPath = os.Getenv(EnvConfigFile)
	}
	if configPath != "" {
		var err error
		if cfg, err = LoadFile(cfg, configPath); err != nil {
			return cfg, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = values
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("failed to read env file: %w", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	return applyEnv(cfg, lookup), nil
}

func applyEnv(cfg Config, lookup func(string) (string, bool)) Config {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	positive := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			*dst = n
		} else {
			slog.Warn("invalid config value, using default",
				"key", key,
				"value", v,
				"default", *dst,
			)
		}
	}

	str("API_BASE_URL", &cfg.APIBaseURL)
	str("APP_TITLE", &cfg.AppTitle)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("LOG_FILE", &cfg.LogFile)
	positive("POSTS_PER_PAGE", &cfg.PostsPerPage)
	positive("MAX_POST_LENGTH", &cfg.MaxPostLength)

	// NO_COLOR follows no-color.org: any non-empty value disables color
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		cfg.NoColor = true
	}

	return cfg
}
