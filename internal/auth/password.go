package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
)

// PasswordAuthenticator exchanges a username and password for a token with a
// single POST to the auth endpoint. The response body is the token itself.
// The password is wiped after the first successful exchange.
type PasswordAuthenticator struct {
	mu         sync.Mutex
	authURL    string
	username   string
	password   []byte
	prompt     func() (string, error)
	httpClient *http.Client
	userAgent  string
}

// PasswordOption configures a PasswordAuthenticator.
type PasswordOption func(*PasswordAuthenticator)

// WithHTTPClient sets the client used for the exchange.
func WithHTTPClient(client *http.Client) PasswordOption {
	return func(a *PasswordAuthenticator) { a.httpClient = client }
}

// WithPasswordPrompt is consulted when the password has been discarded.
func WithPasswordPrompt(prompt func() (string, error)) PasswordOption {
	return func(a *PasswordAuthenticator) { a.prompt = prompt }
}

// WithAuthUserAgent sets the User-Agent header of the exchange.
func WithAuthUserAgent(ua string) PasswordOption {
	return func(a *PasswordAuthenticator) { a.userAgent = ua }
}

// NewPasswordAuthenticator creates an authenticator for the API at baseURL.
func NewPasswordAuthenticator(baseURL, username, password string, opts ...PasswordOption) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		authURL:    strings.TrimSuffix(baseURL, "/") + constants.AuthPath,
		username:   username,
		password:   []byte(password),
		httpClient: &http.Client{Timeout: constants.ShortHTTPTimeout},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Username returns the configured username.
func (a *PasswordAuthenticator) Username() string {
	return a.username
}

type credentials struct {
	UserName string `json:"UserName"`
	Password string `json:"Password"`
}

// Authenticate performs the exchange.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context) (*Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	password, err := a.currentPassword()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(credentials{UserName: a.username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "text/plain, application/json")

	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach auth endpoint: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d %s", constants.ErrAuthStatus, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	access := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if access == "" {
		return nil, constants.ErrEmptyToken
	}

	expiresAt, err := ParseExpiry(access)
	if err != nil {
		return nil, fmt.Errorf("failed to read token expiry: %w", err)
	}

	a.wipePassword()

	return &Token{AccessToken: access, ExpiresAt: expiresAt}, nil
}

func (a *PasswordAuthenticator) currentPassword() (string, error) {
	if len(a.password) > 0 {
		return string(a.password), nil
	}

	if a.prompt == nil {
		return "", constants.ErrNoCredentials
	}

	pw, err := a.prompt()
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrPasswordPromptFail, err)
	}

	if pw == "" {
		return "", constants.ErrNoCredentials
	}

	a.password = []byte(pw)

	return pw, nil
}

func (a *PasswordAuthenticator) wipePassword() {
	for i := range a.password {
		a.password[i] = 0
	}

	a.password = nil
}

// StaticAuthenticator serves an externally issued token. A JWT's expiry is
// honored; any other token is treated as non-expiring.
type StaticAuthenticator struct {
	token    string
	username string
	now      func() time.Time
}

// NewStaticAuthenticator creates an authenticator for a fixed token.
func NewStaticAuthenticator(token, username string) *StaticAuthenticator {
	return &StaticAuthenticator{token: strings.TrimSpace(token), username: username, now: time.Now}
}

// Username returns the configured username, if any.
func (a *StaticAuthenticator) Username() string {
	return a.username
}

// Authenticate returns the fixed token, or an error once it has expired.
func (a *StaticAuthenticator) Authenticate(ctx context.Context) (*Token, error) {
	if a.token == "" {
		return nil, constants.ErrEmptyToken
	}

	token := &Token{AccessToken: a.token}

	if expiresAt, err := ParseExpiry(a.token); err == nil {
		token.ExpiresAt = expiresAt
	}

	if !token.ValidAt(a.now()) {
		return nil, constants.ErrStaticTokenExpired
	}

	return token, nil
}
