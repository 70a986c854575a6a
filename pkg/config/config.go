// Package config loads client settings from a YAML file, an optional .env
// file and FORMIO_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/formio/formio.go/pkg/constants"
)

type Config struct {
	BaseURL    string `yaml:"base_url" env:"FORMIO_BASE_URL"`
	ProjectURL string `yaml:"project_url" env:"FORMIO_PROJECT_URL"`
	AuthURL    string `yaml:"auth_url" env:"FORMIO_AUTH_URL"`
	Namespace  string `yaml:"namespace" env:"FORMIO_NAMESPACE"`
	PathType   string `yaml:"path_type" env:"FORMIO_PATH_TYPE"`

	Timeout   time.Duration `yaml:"timeout" env:"FORMIO_TIMEOUT"`
	CacheSize int           `yaml:"cache_size" env:"FORMIO_CACHE_SIZE"`

	// RateLimit is requests per second; zero disables throttling.
	RateLimit float64 `yaml:"rate_limit" env:"FORMIO_RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"FORMIO_RATE_BURST"`

	LogLevel string `yaml:"log_level" env:"FORMIO_LOG_LEVEL"`
	LogPath  string `yaml:"log_path" env:"FORMIO_LOG_PATH"`

	Token string `yaml:"token" env:"FORMIO_TOKEN"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:   constants.DefaultBaseURL,
		Namespace: constants.DefaultNamespace,
		Timeout:   30 * time.Second,
		CacheSize: 256,
		RateBurst: 1,
		LogLevel:  "info",
	}
}

// Options tells Load where to look. Empty paths are skipped.
type Options struct {
	File    string
	EnvFile string
}

// Load builds a Config from defaults, then opts.File, then opts.EnvFile,
// then the process environment, and validates the result.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return constants.ErrNoBaseURL
	}
	for name, raw := range map[string]string{"base_url": c.BaseURL, "project_url": c.ProjectURL, "auth_url": c.AuthURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
		}
	}
	switch c.PathType {
	case "", constants.PathTypeSubdomains, constants.PathTypeSubdirectories:
	default:
		return fmt.Errorf("unknown path_type %q", c.PathType)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return errors.New("rate_burst must be at least 1 when rate_limit is set")
	}
	return nil
}
