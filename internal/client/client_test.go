package client_test

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fivetwenty-io/tdx-client/internal/cache"
	. "github.com/fivetwenty-io/tdx-client/internal/client"
	"github.com/fivetwenty-io/tdx-client/internal/tdxtest"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, tdx.ErrConfigRequired)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &tdx.Config{Username: "user"})
		require.ErrorIs(t, err, tdx.ErrBaseURLRequired)
	})

	t.Run("requires username for password auth", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &tdx.Config{BaseURL: "https://tdx.example.edu/TDWebApi/api"})
		require.ErrorIs(t, err, ErrUsernameRequired)
	})

	t.Run("requires token for token auth", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &tdx.Config{
			BaseURL:  "https://tdx.example.edu/TDWebApi/api",
			AuthType: tdx.AuthTypeToken,
		})
		require.ErrorIs(t, err, ErrTokenRequired)
	})

	t.Run("rejects unknown auth type", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &tdx.Config{
			BaseURL:  "https://tdx.example.edu/TDWebApi/api",
			AuthType: "kerberos",
			Username: "user",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kerberos")
	})

	t.Run("rejects malformed timezone", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &tdx.Config{
			BaseURL:  "https://tdx.example.edu/TDWebApi/api",
			Username: "user",
			Timezone: "Eastern",
		})
		require.Error(t, err)
	})

	t.Run("creates client with username/password", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &tdx.Config{
			BaseURL:  "https://tdx.example.edu/TDWebApi/api",
			Username: "user",
			Password: "secret",
		})
		require.NoError(t, err)
		assert.NotNil(t, client.Session())
		assert.NotNil(t, client.People())
		assert.NotNil(t, client.Tickets())
		assert.NotNil(t, client.Assets())
		assert.NotNil(t, client.DateCodec())
		assert.NoError(t, client.Close())
	})
}

func TestClientAuthentication(t *testing.T) {
	t.Parallel()

	t.Run("password exchange happens once", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		_, err := client.People().Get(context.Background(), tdxtest.JaneUID)
		require.NoError(t, err)

		_, err = client.Groups().Get(context.Background(), 201)
		require.NoError(t, err)

		assert.Equal(t, 1, server.TokensIssued())
	})

	t.Run("wrong password fails as unauthorized", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server, func(c *tdx.Config) { c.Password = "wrong" })

		_, err := client.People().Get(context.Background(), tdxtest.JaneUID)
		require.Error(t, err)
		assert.True(t, tdx.IsUnauthorized(err))
		assert.Zero(t, server.TokensIssued())
	})

	t.Run("pre-issued token skips the exchange", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		token, err := tdxtest.IssueToken(tdxtest.DefaultUsername, time.Hour)
		require.NoError(t, err)

		client := NewTestClient(t, server, func(c *tdx.Config) {
			c.AuthType = tdx.AuthTypeToken
			c.Token = token
			c.Password = ""
		})

		_, err = client.People().Get(context.Background(), tdxtest.JaneUID)
		require.NoError(t, err)
		assert.Zero(t, server.TokensIssued())
	})

	t.Run("authenticate exchanges eagerly", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		require.NoError(t, client.Authenticate(context.Background()))
		require.NoError(t, client.Authenticate(context.Background()))
		assert.Equal(t, 1, server.TokensIssued())
		assert.NotEmpty(t, client.Session().Token())
	})

	t.Run("rejected token is exchanged again", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)

		var prompts atomic.Int32

		client := NewTestClient(t, server, func(c *tdx.Config) {
			c.PasswordPrompt = func() (string, error) {
				prompts.Add(1)

				return server.Password, nil
			}
		})
		ctx := context.Background()

		require.NoError(t, client.Authenticate(ctx))

		server.FailNext(http.MethodGet, "/people/"+tdxtest.JaneUID, http.StatusUnauthorized, 1, "token revoked")

		_, err := client.People().Get(ctx, tdxtest.JaneUID)
		require.Error(t, err)
		assert.True(t, tdx.IsUnauthorized(err))

		_, err = client.People().Get(ctx, tdxtest.JaneUID)
		require.NoError(t, err)
		assert.Equal(t, 2, server.TokensIssued())
		assert.Equal(t, int32(1), prompts.Load(), "the discarded password is asked for again")
	})

	t.Run("token exchange honors the HTTP timeout", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server, func(c *tdx.Config) { c.HTTPTimeout = time.Nanosecond })

		err := client.Authenticate(context.Background())
		require.ErrorIs(t, err, tdx.ErrAuth)
		assert.Empty(t, client.Session().Token())
	})

	t.Run("authenticate reports the username", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server, func(c *tdx.Config) { c.Password = "wrong" })

		err := client.Authenticate(context.Background())
		require.ErrorIs(t, err, tdx.ErrAuth)

		var authErr *tdx.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, server.Username, authErr.Username)
	})
}

func TestClientCaching(t *testing.T) {
	t.Parallel()

	t.Run("lookups are served from the tables", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			account, err := client.Accounts().GetByName(ctx, "Information Technology")
			require.NoError(t, err)
			assert.Equal(t, 101, account.ID)
		}

		assert.Len(t, server.RequestsTo(http.MethodPost, "/accounts/search"), 1)

		require.NoError(t, client.InvalidateAll(ctx))

		_, err := client.Accounts().GetByName(ctx, "Information Technology")
		require.NoError(t, err)
		assert.Len(t, server.RequestsTo(http.MethodPost, "/accounts/search"), 2)
	})

	t.Run("shared redis tier is scoped per tenant", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		ctx := context.Background()
		withRedis := func(c *tdx.Config) {
			c.Cache = &tdx.CacheConfig{Type: tdx.CacheTypeRedis, Redis: &tdx.RedisConfig{Addr: mr.Addr()}}
		}

		production := tdxtest.NewServer(t)
		sandbox := tdxtest.NewServer(t)
		productionClient := NewTestClient(t, production, withRedis)
		sandboxClient := NewTestClient(t, sandbox, withRedis)

		_, err := productionClient.Tickets().Type(ctx, "General Support")
		require.NoError(t, err)

		_, err = sandboxClient.Tickets().Type(ctx, "General Support")
		require.NoError(t, err)
		assert.Len(t, sandbox.RequestsTo(http.MethodGet, "/40/tickets/types"), 1, "the other tenant's fill is not reused")

		productionPrefix := cache.TenantPrefix("", production.BaseURL(), production.TicketAppID, production.AssetAppID)
		sandboxPrefix := cache.TenantPrefix("", sandbox.BaseURL(), sandbox.TicketAppID, sandbox.AssetAppID)

		countKeys := func(prefix string) int {
			n := 0

			for _, key := range mr.Keys() {
				if strings.HasPrefix(key, prefix) {
					n++
				}
			}

			return n
		}

		assert.Equal(t, 1, countKeys(productionPrefix))
		assert.Equal(t, 1, countKeys(sandboxPrefix))

		require.NoError(t, sandboxClient.InvalidateAll(ctx))
		assert.Zero(t, countKeys(sandboxPrefix))
		assert.Equal(t, 1, countKeys(productionPrefix), "clearing one tenant keeps the other")
	})

	t.Run("disabled caching always asks the service", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server, func(c *tdx.Config) { c.Caching = false })
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			_, err := client.Accounts().GetByName(ctx, "Facilities")
			require.NoError(t, err)
		}

		assert.Len(t, server.RequestsTo(http.MethodPost, "/accounts/search"), 2)
	})
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	t.Run("404 is reported as not found", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		_, err := client.Tickets().Get(context.Background(), 424242)
		require.Error(t, err)
		assert.True(t, tdx.IsNotFound(err))
		assert.Equal(t, http.StatusNotFound, tdx.StatusCode(err))
	})

	t.Run("server errors carry the status", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		server.FailNext(http.MethodPost, "/groups/search", http.StatusInternalServerError, 1, "boom")
		client := NewTestClient(t, server)

		_, err := client.Groups().GetByName(context.Background(), "Help Desk")
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, tdx.StatusCode(err))
	})

	t.Run("missing app IDs are reported before any request", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server, func(c *tdx.Config) {
			c.TicketAppID = 0
			c.AssetAppID = 0
		})

		_, err := client.Tickets().Get(context.Background(), 1001)
		require.ErrorIs(t, err, tdx.ErrNoTicketApp)

		_, err = client.Assets().Get(context.Background(), 2001)
		require.ErrorIs(t, err, tdx.ErrNoAssetApp)

		assert.Empty(t, server.Requests())
	})
}
