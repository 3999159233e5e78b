package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/tdx-client/internal/tdxtest"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// Test static errors.
var (
	ErrTestSomeError = errors.New("some error")
)

// NewTestClient creates a client against a fake service, authenticated with
// the fake's credentials and with lookup caching enabled. Options adjust the
// config before the client is built.
func NewTestClient(tb testing.TB, server *tdxtest.Server, opts ...func(*tdx.Config)) *Client {
	tb.Helper()

	config := &tdx.Config{
		BaseURL:     server.BaseURL(),
		Username:    server.Username,
		Password:    server.Password,
		TicketAppID: server.TicketAppID,
		AssetAppID:  server.AssetAppID,
		Caching:     true,
		Retries:     1,
	}

	for _, opt := range opts {
		opt(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(tb, err)

	tb.Cleanup(func() { _ = client.Close() })

	return client
}

// TestLookupOperation represents a generic name-or-ID lookup test case.
type TestLookupOperation struct {
	Name    string
	Key     string
	WantID  int
	WantErr bool
	// ErrIs is matched with errors.Is when WantErr is set.
	ErrIs error
}

// RunLookupTests runs lookup test cases against a lookup function. The id
// function extracts the identifier compared with WantID.
func RunLookupTests[T any](
	t *testing.T,
	cases []TestLookupOperation,
	lookup func(ctx context.Context, key string) (*T, error),
	id func(*T) int,
) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := lookup(context.Background(), tc.Key)

			if tc.WantErr {
				require.Error(t, err)

				if tc.ErrIs != nil {
					assert.ErrorIs(t, err, tc.ErrIs)
				}

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tc.WantID, id(got))
		})
	}
}
