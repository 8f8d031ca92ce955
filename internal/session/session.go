// Package session holds the authenticated-user state for one run of the
// client. It replaces ambient globals with an explicit object: Init loads
// the current user, Invalidate drops it when the server reports 401, and
// Close persists the cookie jar.
package session

import (
	"context"
	"sync"

	"github.com/peekapeak/peekctl/internal/api"
	"github.com/peekapeak/peekctl/internal/logger"
)

// Session is the application-level auth state
type Session struct {
	client *api.Client

	mu   sync.Mutex
	user *api.User
}

// New wires a Session to the API client's unauthorized hook
func New(client *api.Client) *Session {
	s := &Session{client: client}
	client.SetUnauthorizedHook(s.Invalidate)
	return s
}

// Init resolves the current user from the stored session cookie. An
// unauthorized response leaves the session anonymous without failing.
func (s *Session) Init(ctx context.Context) error {
	user, err := s.client.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// CurrentUser returns the authenticated user, or false when anonymous
func (s *Session) CurrentUser() (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// SetUser records a freshly authenticated user
func (s *Session) SetUser(user api.User) {
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
}

// Invalidate clears the held user. Called on explicit logout and by the
// API client whenever any response comes back 401.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		logger.Debug("Session expired for %s", s.user.Username)
	}
	s.user = nil
}

// Close persists session cookies for the next invocation
func (s *Session) Close() error {
	return s.client.SaveSession()
}
