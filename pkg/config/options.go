package config

import (
	"github.com/rs/zerolog"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/pkg/logger"
)

// Logger builds the logger described by LogLevel and LogPath. The caller
// closes the returned LogData.
func (c *Config) Logger() (*logger.LogData, error) {
	return logger.New().FromPath(c.LogPath).WithLevel(c.LogLevel).Make()
}

// ContextOptions turns c into options for formio.NewContext. Unset fields
// keep the Context defaults.
func (c *Config) ContextOptions(log zerolog.Logger) []formio.ContextOption {
	opts := []formio.ContextOption{
		formio.WithLogger(log),
		formio.WithBaseURL(c.BaseURL),
		formio.WithCacheSize(c.CacheSize),
	}
	if c.Timeout > 0 {
		opts = append(opts, formio.WithTimeout(c.Timeout))
	}
	if c.ProjectURL != "" {
		opts = append(opts, formio.WithProjectURL(c.ProjectURL))
	}
	if c.AuthURL != "" {
		opts = append(opts, formio.WithAuthURL(c.AuthURL))
	}
	if c.PathType != "" {
		opts = append(opts, formio.WithPathType(c.PathType))
	}
	if c.Namespace != "" {
		opts = append(opts, formio.WithNamespace(c.Namespace))
	}
	if c.Token != "" {
		opts = append(opts, formio.WithToken(c.Token))
	}
	return opts
}

// NewContext validates c and builds a Context from it.
func (c *Config) NewContext(log zerolog.Logger, extra ...formio.ContextOption) (*formio.Context, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return formio.NewContext(append(c.ContextOptions(log), extra...)...)
}
