package auth

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/golang-jwt/jwt/v5"
)

// Token is a bearer token and its expiry. A zero ExpiresAt never expires.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// ValidAt reports whether the token is set and, at now, not within the expiry
// margin.
func (t *Token) ValidAt(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return now.Add(constants.TokenExpiryMargin).Before(t.ExpiresAt)
}

// TokenStore holds the current token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token, or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear drops the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

// ParseExpiry reads the exp claim of a JWT. The signature is not verified;
// the token is only inspected to schedule its renewal.
func ParseExpiry(token string) (time.Time, error) {
	if len(strings.Split(token, ".")) != constants.TokenPartsCount {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	claims := &jwt.RegisteredClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return claims.ExpiresAt.Time, nil
}
