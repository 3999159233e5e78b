// Package tdxclient provides the main entry point for creating TeamDynamix API clients
package tdxclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/tdx-client/internal/client"
	"github.com/fivetwenty-io/tdx-client/internal/logging"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// New creates a new TeamDynamix API client.
func New(ctx context.Context, config *tdx.Config) (tdx.Client, error) {
	if config == nil {
		return nil, tdx.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, tdx.ErrBaseURLRequired
	}

	// Normalize API root
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	config.BaseURL = baseURL

	if config.Logger == nil {
		level := "ERROR"
		if config.Debug {
			level = "DEBUG"
		}

		config.Logger = logging.New(logging.Options{Level: level})
	}

	// Use the internal client implementation
	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewFromSettings resolves settings with LoadSettings and creates a client.
// The prompt is used when the password is missing or set to "Prompt".
func NewFromSettings(ctx context.Context, opts LoadOptions, prompt func() (string, error)) (tdx.Client, error) {
	settings, err := LoadSettings(opts)
	if err != nil {
		return nil, err
	}

	config, err := settings.ToConfig()
	if err != nil {
		return nil, err
	}

	if settings.PromptsForPassword() {
		config.PasswordPrompt = prompt
	}

	return New(ctx, config)
}

// NewWithToken creates a new client with an API root and a pre-issued token.
func NewWithToken(ctx context.Context, baseURL, token string) (tdx.Client, error) {
	return New(ctx, &tdx.Config{
		BaseURL:  baseURL,
		AuthType: tdx.AuthTypeToken,
		Token:    token,
	})
}

// NewWithPassword creates a new client using username/password authentication.
func NewWithPassword(ctx context.Context, baseURL, username, password string) (tdx.Client, error) {
	return New(ctx, &tdx.Config{
		BaseURL:  baseURL,
		AuthType: tdx.AuthTypePassword,
		Username: username,
		Password: password,
	})
}
