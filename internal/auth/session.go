package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// Authenticator obtains a new token.
type Authenticator interface {
	Authenticate(ctx context.Context) (*Token, error)
	// Username identifies the principal in error messages. May be empty.
	Username() string
}

// Session keeps one bearer token valid for a client. A Session is safe for
// concurrent use; renewals are serialized.
type Session struct {
	mu            sync.Mutex
	store         *TokenStore
	authenticator Authenticator
	persister     tdx.TokenPersister
	logger        tdx.Logger
	now           func() time.Time
	lastErr       error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger used for renewal failures.
func WithSessionLogger(logger tdx.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithTokenPersister receives every token issued by the authenticator.
func WithTokenPersister(p tdx.TokenPersister) SessionOption {
	return func(s *Session) { s.persister = p }
}

// WithInitialToken seeds the session with a previously issued token.
func WithInitialToken(token *Token) SessionOption {
	return func(s *Session) { s.store.Set(token) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session that renews its token with authenticator.
func NewSession(authenticator Authenticator, opts ...SessionOption) *Session {
	s := &Session{
		store:         NewTokenStore(),
		authenticator: authenticator,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// EnsureValid renews the token when it is missing or expires within the
// margin. It returns false, never an error; the cause is kept in LastError.
func (s *Session) EnsureValid(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Get().ValidAt(s.now()) {
		return true
	}

	token, err := s.authenticator.Authenticate(ctx)
	if err != nil {
		s.lastErr = err
		s.logError("authentication failed", err)

		return false
	}

	if !token.ValidAt(s.now()) {
		s.lastErr = fmt.Errorf("%w at %s", constants.ErrTokenExpired, token.ExpiresAt.Format(time.RFC3339))
		s.logError("authentication returned an expired token", s.lastErr)

		return false
	}

	s.lastErr = nil
	s.store.Set(token)

	if s.persister != nil {
		if err := s.persister.SaveToken(token.AccessToken, token.ExpiresAt); err != nil && s.logger != nil {
			s.logger.Warn("failed to persist token", map[string]interface{}{"error": err})
		}
	}

	return true
}

// Token returns the current bearer token.
func (s *Session) Token() string {
	if t := s.store.Get(); t != nil {
		return t.AccessToken
	}

	return ""
}

// ExpiresAt returns the current token's expiry.
func (s *Session) ExpiresAt() time.Time {
	if t := s.store.Get(); t != nil {
		return t.ExpiresAt
	}

	return time.Time{}
}

// LastError returns the cause of the most recent failed renewal.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastErr
}

// Username returns the authenticator's principal.
func (s *Session) Username() string {
	return s.authenticator.Username()
}

// Invalidate forces a renewal on the next EnsureValid.
func (s *Session) Invalidate() {
	s.store.Clear()
}

func (s *Session) logError(msg string, err error) {
	if s.logger == nil {
		return
	}

	s.logger.Error(msg, map[string]interface{}{
		"username": s.authenticator.Username(),
		"error":    err,
	})
}
