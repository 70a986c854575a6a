package formio

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/formio/formio.go/pkg/cache"
	"github.com/formio/formio.go/pkg/constants"
	"github.com/formio/formio.go/pkg/events"
	"github.com/formio/formio.go/pkg/models"
	"github.com/formio/formio.go/pkg/plugin"
	"github.com/formio/formio.go/pkg/session"
)

const defaultTimeout = 30 * time.Second

// Context is the state shared by every Formio instance created from it:
// server URLs, the session, the response cache, plugins and the event bus.
// It is safe for concurrent use.
type Context struct {
	mu            sync.RWMutex
	baseURL       string
	baseURLSet    bool
	projectURL    string
	projectURLSet bool
	authURL       string
	pathType      string
	namespace     string

	sessions   *session.Store
	plugins    *plugin.Registry
	events     *events.Bus
	cache      *cache.Cache
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time

	// checkTokens inspects a token before it is attached to a request.
	checkTokens bool
	// initialToken is seeded once every option has run.
	initialToken string
}

// ContextOption configures a Context.
type ContextOption func(*Context) error

// WithBaseURL sets the API root, for example https://api.form.io.
func WithBaseURL(u string) ContextOption {
	return func(c *Context) error {
		if u == "" {
			return ErrNoBaseURL
		}
		c.baseURL = strings.TrimRight(u, "/")
		c.baseURLSet = true
		return nil
	}
}

// WithProjectURL pins the project URL. Without it the project URL follows
// the base URL, which is the layout of a server hosting a single project.
func WithProjectURL(u string) ContextOption {
	return func(c *Context) error {
		c.projectURL = strings.TrimRight(u, "/")
		c.projectURLSet = u != ""
		return nil
	}
}

// WithAuthURL sets the URL used for current user and logout requests.
func WithAuthURL(u string) ContextOption {
	return func(c *Context) error {
		c.authURL = strings.TrimRight(u, "/")
		return nil
	}
}

// WithPathType selects how project names appear in URLs: "Subdomains"
// (default) or "Subdirectories".
func WithPathType(t string) ContextOption {
	return func(c *Context) error {
		c.pathType = t
		return nil
	}
}

// WithNamespace sets the key under which the session is stored.
func WithNamespace(ns string) ContextOption {
	return func(c *Context) error {
		c.namespace = ns
		return nil
	}
}

func WithHTTPClient(client *http.Client) ContextOption {
	return func(c *Context) error {
		c.httpClient = client
		return nil
	}
}

func WithTimeout(d time.Duration) ContextOption {
	return func(c *Context) error {
		c.httpClient = &http.Client{Timeout: d}
		return nil
	}
}

func WithLogger(l zerolog.Logger) ContextOption {
	return func(c *Context) error {
		c.logger = l
		return nil
	}
}

// WithCacheSize bounds the GET cache. Zero disables caching.
func WithCacheSize(n int) ContextOption {
	return func(c *Context) error {
		cc, err := cache.New(n)
		if err != nil {
			return err
		}
		c.cache = cc
		return nil
	}
}

// WithSessionStore shares a session store between contexts.
func WithSessionStore(s *session.Store) ContextOption {
	return func(c *Context) error {
		c.sessions = s
		return nil
	}
}

func WithPlugins(r *plugin.Registry) ContextOption {
	return func(c *Context) error {
		c.plugins = r
		return nil
	}
}

func WithEvents(b *events.Bus) ContextOption {
	return func(c *Context) error {
		c.events = b
		return nil
	}
}

// WithToken seeds the session with a token. The token is stored under the
// final namespace and session store, whatever the option order.
func WithToken(token string) ContextOption {
	return func(c *Context) error {
		c.initialToken = token
		return nil
	}
}

// WithTokenCheck controls whether tokens are decoded and checked for expiry
// before being sent. It is on by default.
func WithTokenCheck(on bool) ContextOption {
	return func(c *Context) error {
		c.checkTokens = on
		return nil
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ContextOption {
	return func(c *Context) error {
		c.now = now
		return nil
	}
}

// NewContext returns a Context with defaults applied before opts.
func NewContext(opts ...ContextOption) (*Context, error) {
	cc, err := cache.New(cache.DefaultSize)
	if err != nil {
		return nil, err
	}
	c := &Context{
		baseURL:     constants.DefaultBaseURL,
		namespace:   constants.DefaultNamespace,
		sessions:    session.NewStore(),
		plugins:     plugin.NewRegistry(),
		events:      events.NewBus(),
		cache:       cc,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		logger:      zerolog.Nop(),
		now:         time.Now,
		checkTokens: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.initialToken != "" {
		c.sessions.SetToken(c.namespace, c.initialToken)
		c.initialToken = ""
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCtx  *Context
)

// DefaultContext returns the process-wide Context used when nil is passed
// to New.
func DefaultContext() *Context {
	defaultOnce.Do(func() {
		c, err := NewContext()
		if err != nil {
			panic(err)
		}
		defaultCtx = c
	})
	return defaultCtx
}

func (c *Context) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL changes the API root. A project URL that was never set
// explicitly follows it.
func (c *Context) SetBaseURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(u, "/")
	c.baseURLSet = true
}

// ProjectURL returns the explicit project URL, or the base URL.
func (c *Context) ProjectURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.projectURLSet {
		return c.baseURL
	}
	return c.projectURL
}

// configuredProjectURL is the project URL the user configured, directly or
// through the base URL, and "" when both are still defaults.
func (c *Context) configuredProjectURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.projectURLSet:
		return c.projectURL
	case c.baseURLSet:
		return c.baseURL
	default:
		return ""
	}
}

func (c *Context) SetProjectURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectURL = strings.TrimRight(u, "/")
	c.projectURLSet = u != ""
}

// AuthURL returns the auth URL, or the project URL when none is set.
func (c *Context) AuthURL() string {
	c.mu.RLock()
	u := c.authURL
	c.mu.RUnlock()
	if u == "" {
		return c.ProjectURL()
	}
	return u
}

func (c *Context) SetAuthURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authURL = strings.TrimRight(u, "/")
}

func (c *Context) PathType() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pathType
}

func (c *Context) SetPathType(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pathType = t
}

func (c *Context) Namespace() string {
	return c.namespace
}

func (c *Context) Plugins() *plugin.Registry {
	return c.plugins
}

func (c *Context) Events() *events.Bus {
	return c.events
}

func (c *Context) Logger() zerolog.Logger {
	return c.logger
}

// Token returns the session token of namespace ns, or of the context
// namespace when ns is empty.
func (c *Context) Token(ns string) string {
	return c.sessions.Token(c.ns(ns))
}

// SetToken stores a token. An empty token ends the session and notifies
// formio.user listeners with a nil user.
func (c *Context) SetToken(ns, token string) {
	ns = c.ns(ns)
	prev, user := c.sessions.Get(ns)
	if prev == token {
		return
	}
	c.sessions.SetToken(ns, token)
	c.cache.Purge()
	if token == "" && user != nil {
		c.events.Emit(events.User, (*models.User)(nil))
	}
}

// User returns the cached current user.
func (c *Context) User(ns string) *models.User {
	return c.sessions.User(c.ns(ns))
}

// SetUser caches the current user and notifies formio.user listeners.
// A nil user ends the session.
func (c *Context) SetUser(ns string, user *models.User) {
	c.sessions.SetUser(c.ns(ns), user)
	if user == nil {
		c.cache.Purge()
	}
	c.events.Emit(events.User, user)
}

// ClearCache drops every cached GET response.
func (c *Context) ClearCache() {
	c.cache.Purge()
}

// endSession clears token and user together, then emits reason followed by
// formio.user.
func (c *Context) endSession(ns, reason string, payload any) {
	ns = c.ns(ns)
	cleared := c.sessions.Clear(ns)
	c.cache.Purge()
	c.logger.Warn().Str("namespace", ns).Str("reason", reason).Msg("session cleared")
	if reason != "" {
		c.events.Emit(reason, payload)
	}
	if cleared {
		c.events.Emit(events.User, (*models.User)(nil))
	}
}

func (c *Context) ns(ns string) string {
	if ns == "" {
		return c.namespace
	}
	return ns
}
