package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/auth"
	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: "svc-tdx"}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-server-key"))
	require.NoError(t, err)

	return token
}

func TestToken_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    *auth.Token
		expected bool
	}{
		{name: "nil token", token: nil, expected: false},
		{name: "empty access token", token: &auth.Token{}, expected: false},
		{name: "no expiry", token: &auth.Token{AccessToken: "t"}, expected: true},
		{name: "future expiry", token: &auth.Token{AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}, expected: true},
		{name: "expired", token: &auth.Token{AccessToken: "t", ExpiresAt: time.Now().Add(-time.Hour)}, expected: false},
		{
			name:     "within 60s margin",
			token:    &auth.Token{AccessToken: "t", ExpiresAt: time.Now().Add(45 * time.Second)},
			expected: false,
		},
		{
			name:     "just outside margin",
			token:    &auth.Token{AccessToken: "t", ExpiresAt: time.Now().Add(90 * time.Second)},
			expected: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.token.ValidAt(time.Now()))
		})
	}
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	assert.Nil(t, store.Get())

	store.Set(&auth.Token{AccessToken: "abc"})
	assert.Equal(t, "abc", store.Get().AccessToken)

	store.Clear()
	assert.Nil(t, store.Get())
}

func TestParseExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	got, err := auth.ParseExpiry(signedToken(t, exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got), "want %s got %s", exp, got)

	_, err = auth.ParseExpiry(signedToken(t, time.Time{}))
	assert.True(t, errors.Is(err, constants.ErrNoExpirationClaim))

	_, err = auth.ParseExpiry("opaque-token")
	assert.True(t, errors.Is(err, constants.ErrInvalidJWTFormat))

	_, err = auth.ParseExpiry("a.b.c")
	assert.True(t, errors.Is(err, constants.ErrInvalidJWTFormat))
}
