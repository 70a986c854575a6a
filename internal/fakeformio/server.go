// Package fakeformio provides an in-memory Form.io compatible HTTP server
// for tests. It hosts a single project at its root (the layout of the open
// source server) and includes failure injection.
//
// Stub responses match requests by method and path and answer before the
// built-in routes, optionally after injected failures such as delays,
// arbitrary statuses or dropped connections.
package fakeformio

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/formio/formio.go/pkg/constants"
	"github.com/formio/formio.go/pkg/models"
	"github.com/formio/formio.go/pkg/session"
)

// cryptoRandFloat64 generates a cryptographically secure random float64 in [0.0, 1.0)
func cryptoRandFloat64() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<53))
	return float64(n.Int64()) / float64(1<<53)
}

// FailureType represents the type of failure to inject during request processing
type FailureType string

const (
	// FailureNone indicates no failure injection
	FailureNone FailureType = "none"
	// FailureDelay delays before processing the request
	FailureDelay FailureType = "delay"
	// FailureStatus answers with Status and Body instead of the real response
	FailureStatus FailureType = "status"
	// FailureDropConnection closes the connection without answering
	FailureDropConnection FailureType = "drop_connection"
	// FailureInvalidBody answers 200 with a body that is not JSON
	FailureInvalidBody FailureType = "invalid_body"
)

// FailureConfig defines how and when to inject a specific failure type
type FailureConfig struct {
	Type FailureType
	// Probability of triggering this failure (0.0 to 1.0)
	Probability float64
	// Delay is used by FailureDelay
	Delay time.Duration
	// Status and Body are used by FailureStatus
	Status int
	Body   string
}

// RequestMatcher selects requests by HTTP method and a path pattern.
type RequestMatcher struct {
	// Method is the HTTP method; "" matches any.
	Method string
	// Path is a regular expression matched against the URL path.
	Path *regexp.Regexp
	// Matcher is an optional extra condition.
	Matcher func(r *http.Request) bool
}

func (m RequestMatcher) match(r *http.Request) bool {
	if m.Method != "" && m.Method != r.Method {
		return false
	}
	if m.Path != nil && !m.Path.MatchString(r.URL.Path) {
		return false
	}
	return m.Matcher == nil || m.Matcher(r)
}

// StubResponse defines a pre-configured answer for matching requests.
type StubResponse struct {
	Matcher RequestMatcher
	Status  int
	// Body is JSON encoded unless it is a string or []byte.
	Body     any
	Header   http.Header
	Failures []FailureConfig
}

// MatchPath creates a RequestMatcher for method and an anchored path pattern.
func MatchPath(method, pattern string) RequestMatcher {
	return RequestMatcher{
		Method: method,
		Path:   regexp.MustCompile("^" + pattern + "$"),
	}
}

// SimpleStubResponse answers 200 with body.
func SimpleStubResponse(method, pattern string, body any) StubResponse {
	return StubResponse{
		Matcher: MatchPath(method, pattern),
		Status:  http.StatusOK,
		Body:    body,
	}
}

// ErrorStubResponse answers with status and a plain-text body.
func ErrorStubResponse(method, pattern string, status int, body string) StubResponse {
	return StubResponse{
		Matcher: MatchPath(method, pattern),
		Status:  status,
		Body:    body,
	}
}

// RecordedRequest is what the server saw of a request.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is an in-memory Form.io server.
type Server struct {
	mu             sync.RWMutex
	router         *mux.Router
	ts             *httptest.Server
	stubResponses  []StubResponse
	globalFailures []FailureConfig
	requests       []RecordedRequest

	signingKey []byte
	project    models.Project
	forms      map[string]*models.Form
	subs       map[string]map[string]*models.Submission
	actions    map[string]map[string]*models.Action
	roles      map[string]*models.Role
	users      map[string]*models.User
	passwords  map[string]string
	tempTokens map[string]string

	// AdminRole, AuthenticatedRole and AnonymousRole are the ids of the
	// seeded roles.
	AdminRole         string
	AuthenticatedRole string
	AnonymousRole     string

	// Now is the server clock.
	Now func() time.Time
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration
	// RefreshTokens makes every authenticated response carry a freshly
	// issued token instead of echoing the presented one.
	RefreshTokens bool
	// DefaultLimit is the page size when a request names none.
	DefaultLimit int
}

// NewServer creates a server seeded with a project and the administrator,
// authenticated and anonymous roles. Call Start to serve it.
func NewServer() *Server {
	s := &Server{
		signingKey:   []byte(uuid.NewString()),
		forms:        make(map[string]*models.Form),
		subs:         make(map[string]map[string]*models.Submission),
		actions:      make(map[string]map[string]*models.Action),
		roles:        make(map[string]*models.Role),
		users:        make(map[string]*models.User),
		passwords:    make(map[string]string),
		tempTokens:   make(map[string]string),
		Now:          time.Now,
		TokenTTL:     time.Hour,
		DefaultLimit: 10,
	}
	s.project = models.Project{ID: NewID(), Title: "Test", Name: "test"}
	s.AdminRole = s.seedRole("Administrator", true, false)
	s.AuthenticatedRole = s.seedRole("Authenticated", false, false)
	s.AnonymousRole = s.seedRole("Anonymous", false, true)
	s.routes()
	return s
}

// NewID returns a fresh ObjectID in hex.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

func (s *Server) seedRole(title string, admin, def bool) string {
	id := NewID()
	s.roles[id] = &models.Role{
		ID:          id,
		Title:       title,
		MachineName: machineName(title),
		Admin:       admin,
		Default:     def,
		Created:     s.timestamp(),
		Modified:    s.timestamp(),
	}
	return id
}

// Start serves the fake on a random local port.
func (s *Server) Start() {
	s.ts = httptest.NewServer(s)
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.ts != nil {
		s.ts.Close()
	}
}

// URL returns the base URL of a started server.
func (s *Server) URL() string {
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Client returns an HTTP client for the started server.
func (s *Server) Client() *http.Client {
	if s.ts == nil {
		return http.DefaultClient
	}
	return s.ts.Client()
}

// AddStubResponse adds a stub. Stubs are matched in the order they were
// added.
func (s *Server) AddStubResponse(stub StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubResponses = append(s.stubResponses, stub)
}

// SetGlobalFailures sets failures checked on every request before stubs.
func (s *Server) SetGlobalFailures(failures []FailureConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globalFailures = failures
}

// Requests returns a copy of the requests seen so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request, if any.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// AddUser registers a user holding the authenticated role plus roles.
func (s *Server) AddUser(email, password string, roles ...string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{
		ID:       NewID(),
		Data:     map[string]any{"email": email},
		Roles:    append([]string{s.AuthenticatedRole}, roles...),
		Created:  s.timestamp(),
		Modified: s.timestamp(),
	}
	s.users[u.ID] = u
	s.passwords[email] = password
	return u
}

// AddForm stores form, assigning an id when it has none, and returns the id.
func (s *Server) AddForm(form *models.Form) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if form.ID == "" {
		form.ID = NewID()
	}
	if form.Project == "" {
		form.Project = s.project.ID
	}
	form.Created, form.Modified = s.timestamp(), s.timestamp()
	s.forms[form.ID] = form
	return form.ID
}

// Project returns the hosted project.
func (s *Server) Project() models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// IssueToken signs a token for userID that expires after ttl. A negative
// ttl yields an already expired token.
func (s *Server) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := s.Now()
	claims := session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		User:    &session.Ref{ID: userID},
		Project: &session.Ref{ID: s.project.ID},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// authError is how a presented token failed.
type authError struct {
	status int
	body   string
}

// authenticate resolves the token of r. A request without a token is
// anonymous: nil user and nil error.
func (s *Server) authenticate(r *http.Request) (*models.User, string, *authError) {
	raw := r.Header.Get(constants.HeaderJWTToken)
	if raw == "" {
		raw = r.URL.Query().Get("token")
		if tok, ok := s.tempToken(raw); ok {
			raw = tok
		}
	}
	if raw == "" {
		return nil, "", nil
	}
	claims := &session.Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.Now))
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, "", &authError{status: constants.StatusSessionExpired, body: "Token Expired"}
	default:
		return nil, "", &authError{status: http.StatusBadRequest, body: constants.BadTokenBody}
	}

	s.mu.RLock()
	user, ok := s.users[claims.UserID()]
	s.mu.RUnlock()
	if !ok {
		return nil, "", &authError{status: http.StatusUnauthorized, body: "Unauthorized"}
	}
	return user, raw, nil
}

func (s *Server) tempToken(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tempTokens[key]
	return tok, ok
}

// ServeHTTP records the request, applies failures and stubs, then routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := readBody(r)
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	globalFailures := s.globalFailures
	var matchedStub *StubResponse
	for i := range s.stubResponses {
		if s.stubResponses[i].Matcher.match(r) {
			stub := s.stubResponses[i]
			matchedStub = &stub
			break
		}
	}
	s.mu.Unlock()

	for _, failure := range globalFailures {
		if shouldTriggerFailure(failure.Probability) && applyFailure(w, failure) {
			return
		}
	}

	if matchedStub != nil {
		for _, failure := range matchedStub.Failures {
			if shouldTriggerFailure(failure.Probability) && applyFailure(w, failure) {
				return
			}
		}
		writeStub(w, matchedStub)
		return
	}

	s.router.ServeHTTP(w, r)
}

// applyFailure injects failure and reports whether the response is done.
func applyFailure(w http.ResponseWriter, failure FailureConfig) bool {
	switch failure.Type {
	case FailureDelay:
		time.Sleep(failure.Delay)
		return false
	case FailureStatus:
		w.WriteHeader(failure.Status)
		_, _ = w.Write([]byte(failure.Body))
		return true
	case FailureInvalidBody:
		w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
		_, _ = w.Write([]byte("{not json"))
		return true
	case FailureDropConnection:
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusBadGateway)
			return true
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return true
	default:
		return false
	}
}

func writeStub(w http.ResponseWriter, stub *StubResponse) {
	for k, vs := range stub.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := stub.Status
	if status == 0 {
		status = http.StatusOK
	}
	switch b := stub.Body.(type) {
	case nil:
		w.WriteHeader(status)
	case string:
		w.WriteHeader(status)
		_, _ = w.Write([]byte(b))
	case []byte:
		w.WriteHeader(status)
		_, _ = w.Write(b)
	default:
		writeJSON(w, status, b)
	}
}

func shouldTriggerFailure(probability float64) bool {
	if probability >= 1 {
		return true
	}
	return cryptoRandFloat64() < probability
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("encode: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func (s *Server) timestamp() string {
	return s.Now().UTC().Format(time.RFC3339Nano)
}
