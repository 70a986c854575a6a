package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formio/formio.go/pkg/config"
	"github.com/formio/formio.go/pkg/constants"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, constants.DefaultBaseURL, cfg.BaseURL)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "formio.yaml", `
base_url: https://forms.example.com
project_url: https://forms.example.com/myproject
path_type: Subdirectories
timeout: 5s
cache_size: 0
rate_limit: 2.5
rate_burst: 3
log_level: debug
`)

	cfg, err := config.Load(config.Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example.com", cfg.BaseURL)
	assert.Equal(t, "https://forms.example.com/myproject", cfg.ProjectURL)
	assert.Equal(t, constants.PathTypeSubdirectories, cfg.PathType)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.CacheSize)
	assert.InDelta(t, 2.5, cfg.RateLimit, 0.001)
	assert.Equal(t, 3, cfg.RateBurst)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, constants.DefaultNamespace, cfg.Namespace)
}

func TestLoadEnvironmentWins(t *testing.T) {
	path := writeFile(t, "formio.yaml", "base_url: https://forms.example.com\nnamespace: yaml\n")
	t.Setenv("FORMIO_NAMESPACE", "env")
	t.Setenv("FORMIO_TIMEOUT", "90s")

	cfg, err := config.Load(config.Options{File: path})
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example.com", cfg.BaseURL)
	assert.Equal(t, "env", cfg.Namespace)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestLoadEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "FORMIO_AUTH_URL=https://auth.example.com\nFORMIO_TOKEN=abc\n")
	t.Cleanup(func() {
		os.Unsetenv("FORMIO_AUTH_URL")
		os.Unsetenv("FORMIO_TOKEN")
	})

	cfg, err := config.Load(config.Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com", cfg.AuthURL)
	assert.Equal(t, "abc", cfg.Token)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(config.Options{File: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "failed to read config")

	_, err = config.Load(config.Options{File: writeFile(t, "bad.yaml", "base_url: [")})
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = config.Load(config.Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.ErrorContains(t, err, "failed to load env file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"no base url", func(c *config.Config) { c.BaseURL = "" }, constants.ErrNoBaseURL.Error()},
		{"relative project url", func(c *config.Config) { c.ProjectURL = "/myproject" }, "project_url"},
		{"ftp auth url", func(c *config.Config) { c.AuthURL = "ftp://example.com" }, "auth_url"},
		{"path type", func(c *config.Config) { c.PathType = "Folders" }, "path_type"},
		{"negative timeout", func(c *config.Config) { c.Timeout = -time.Second }, "timeout"},
		{"negative cache", func(c *config.Config) { c.CacheSize = -1 }, "cache_size"},
		{"negative rate", func(c *config.Config) { c.RateLimit = -1 }, "rate_limit"},
		{"zero burst", func(c *config.Config) { c.RateLimit = 1; c.RateBurst = 0 }, "rate_burst"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}

	assert.NoError(t, config.Default().Validate())
}

func TestNewContext(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = "https://forms.example.com/"
	cfg.ProjectURL = "https://forms.example.com/myproject"
	cfg.AuthURL = "https://auth.example.com"
	cfg.PathType = constants.PathTypeSubdirectories
	cfg.Namespace = "custom"
	cfg.Token = "tok"

	c, err := cfg.NewContext(zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://forms.example.com", c.BaseURL())
	assert.Equal(t, "https://forms.example.com/myproject", c.ProjectURL())
	assert.Equal(t, "https://auth.example.com", c.AuthURL())
	assert.Equal(t, constants.PathTypeSubdirectories, c.PathType())
	assert.Equal(t, "custom", c.Namespace())
	assert.Equal(t, "tok", c.Token(""))
	assert.Equal(t, "tok", c.Token("custom"))

	cfg.PathType = "Folders"
	_, err = cfg.NewContext(zerolog.Nop())
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogPath = filepath.Join(t.TempDir(), "formio.log")
	cfg.LogLevel = "warn"

	ld, err := cfg.Logger()
	require.NoError(t, err)
	ld.Logger.Info().Msg("dropped")
	ld.Logger.Warn().Msg("kept")
	require.NoError(t, ld.Close())

	data, err := os.ReadFile(cfg.LogPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"message":"kept"`)
}
