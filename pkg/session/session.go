// Package session keeps the authentication token and the current user,
// one pair per namespace.
//
// Token and user always change together from a reader's point of view:
// clearing one clears the other inside the same critical section.
package session

import (
	"sync"

	"github.com/formio/formio.go/pkg/constants"
	"github.com/formio/formio.go/pkg/models"
)

type state struct {
	token string
	user  *models.User
}

// Store is safe for concurrent use. The zero value is ready to use.
type Store struct {
	mu     sync.RWMutex
	states map[string]state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

func key(namespace string) string {
	if namespace == "" {
		return constants.DefaultNamespace
	}
	return namespace
}

// Token returns the token of namespace, or "".
func (s *Store) Token(namespace string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[key(namespace)].token
}

// User returns the cached user of namespace, or nil.
func (s *Store) User(namespace string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[key(namespace)].user
}

// Get returns token and user as one consistent pair.
func (s *Store) Get(namespace string) (string, *models.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.states[key(namespace)]
	return st.token, st.user
}

// SetToken stores token. An empty token clears the user too. It reports
// whether the stored token changed.
func (s *Store) SetToken(namespace, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(namespace)
	st := s.states[k]
	if token == "" {
		changed := st.token != "" || st.user != nil
		s.delete(k)
		return changed
	}
	if st.token == token {
		return false
	}
	st.token = token
	s.put(k, st)
	return true
}

// SetUser stores user. A nil user clears the token too.
func (s *Store) SetUser(namespace string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(namespace)
	if user == nil {
		s.delete(k)
		return
	}
	st := s.states[k]
	st.user = user
	s.put(k, st)
}

// Clear drops token and user and reports whether anything was set.
func (s *Store) Clear(namespace string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(namespace)
	st, ok := s.states[k]
	s.delete(k)
	return ok && (st.token != "" || st.user != nil)
}

func (s *Store) put(k string, st state) {
	if s.states == nil {
		s.states = make(map[string]state)
	}
	s.states[k] = st
}

func (s *Store) delete(k string) {
	delete(s.states, k)
}
