// Package ratelimit throttles outgoing Form.io requests per host.
//
// The limiter hooks the preRequest extension point, so every request made
// through a Context, including static and plugin-served ones, waits for a
// token before it is sent.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	formio "github.com/formio/formio.go"
	"github.com/formio/formio.go/pkg/plugin"
)

// Name is the name the plugin registers under.
const Name = "ratelimit"

// Limiter hands out one token bucket per host.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	logger   zerolog.Logger
}

// New returns a limiter allowing rps requests per second to each host with
// bursts of up to burst requests. A burst below one is raised to one.
func New(rps float64, burst int, logger zerolog.Logger) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

func (l *Limiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[host] = lim
	}
	return lim
}

// Wait blocks until a request to rawURL may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("ratelimit: %w", err)
	}
	lim := l.limiter(u.Host)
	if lim.Tokens() < 1 {
		l.logger.Debug().Str("host", u.Host).Msg("formio request throttled")
	}
	if err := lim.Wait(ctx); err != nil {
		return fmt.Errorf("ratelimit %s: %w", u.Host, err)
	}
	return nil
}

// Hosts returns the number of hosts seen so far.
func (l *Limiter) Hosts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Plugin returns the preRequest plugin for l. It runs before plugins of
// default priority.
func (l *Limiter) Plugin() *plugin.Plugin {
	return &plugin.Plugin{
		Priority: -100,
		Hooks: map[string]plugin.Hook{
			plugin.PreRequest: func(ctx context.Context, args ...any) (any, error) {
				if len(args) == 0 {
					return nil, nil
				}
				req, ok := args[0].(*formio.RequestArgs)
				if !ok {
					return nil, nil
				}
				return nil, l.Wait(ctx, req.URL)
			},
		},
	}
}

// Register adds l to the plugins of c.
func (l *Limiter) Register(c *formio.Context) {
	c.Plugins().Register(l.Plugin(), Name)
}
