package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fivetwenty-io/tdx-client/internal/auth"
	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// Static errors for err113 compliance.
var (
	ErrUsernameRequired = errors.New("username is required for password authentication")
	ErrTokenRequired    = errors.New("token is required for token authentication")
)

// Client implements the tdx.Client interface.
type Client struct {
	httpClient *http.Client
	session    *auth.Session
	registry   *cache.Registry
	store      tdx.Cache
	codec      *tdx.DateCodec
	logger     tdx.Logger

	ticketAppID int
	assetAppID  int
	username    string

	// Resource clients
	people     *PeopleClient
	accounts   *AccountsClient
	groups     *GroupsClient
	locations  *LocationsClient
	attributes *AttributesClient
	tickets    *TicketsClient
	assets     *AssetsClient
}

// createSession builds the token session for the configured auth mode.
func createSession(config *tdx.Config) (*auth.Session, error) {
	var authenticator auth.Authenticator

	switch config.AuthType {
	case tdx.AuthTypeToken:
		if config.Token == "" {
			return nil, ErrTokenRequired
		}

		authenticator = auth.NewStaticAuthenticator(config.Token, config.Username)
	case "", tdx.AuthTypePassword:
		if config.Username == "" {
			return nil, ErrUsernameRequired
		}

		var passwordOpts []auth.PasswordOption

		if config.PasswordPrompt != nil {
			passwordOpts = append(passwordOpts, auth.WithPasswordPrompt(config.PasswordPrompt))
		}

		if config.UserAgent != "" {
			passwordOpts = append(passwordOpts, auth.WithAuthUserAgent(config.UserAgent))
		}

		if config.HTTPTimeout > 0 {
			if exchangeClient, err := http.NewHTTPClient(config.HTTPTimeout, false); err == nil {
				passwordOpts = append(passwordOpts, auth.WithHTTPClient(exchangeClient))
			}
		}

		authenticator = auth.NewPasswordAuthenticator(config.BaseURL, config.Username, config.Password, passwordOpts...)
	default:
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidAuthType, config.AuthType)
	}

	var sessionOpts []auth.SessionOption

	if config.Logger != nil {
		sessionOpts = append(sessionOpts, auth.WithSessionLogger(config.Logger))
	}

	if config.TokenPersister != nil {
		sessionOpts = append(sessionOpts, auth.WithTokenPersister(config.TokenPersister))
	}

	// A persisted token is reused while it is still valid.
	if config.AuthType != tdx.AuthTypeToken && config.Token != "" {
		expiresAt, err := auth.ParseExpiry(config.Token)
		if err == nil {
			sessionOpts = append(sessionOpts, auth.WithInitialToken(&auth.Token{
				AccessToken: config.Token,
				ExpiresAt:   expiresAt,
			}))
		}
	}

	return auth.NewSession(authenticator, sessionOpts...), nil
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *tdx.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Retries > 0 {
		httpOpts = append(httpOpts, http.WithRetries(config.Retries))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.HTTP2 {
		httpOpts = append(httpOpts, http.WithHTTP2(true))
	}

	return httpOpts
}

// createRegistry builds the lookup tables, with a shared second tier when one
// is configured. Shared keys are scoped to the tenant and app IDs.
func createRegistry(ctx context.Context, config *tdx.Config) (*cache.Registry, tdx.Cache, error) {
	opts := cache.Options{
		Enabled: config.Caching,
		Logger:  config.Logger,
	}

	var store tdx.Cache

	if config.Caching && config.Cache != nil && config.Cache.Type != tdx.CacheTypeNone {
		var prefix string
		if config.Cache.Options != nil {
			opts.TTL = config.Cache.Options.TTL
			prefix = config.Cache.Options.KeyPrefix
		}

		opts.KeyPrefix = cache.TenantPrefix(prefix, config.BaseURL, config.TicketAppID, config.AssetAppID)

		var err error

		store, err = tdx.NewCacheFromConfig(ctx, scopeCacheConfig(config.Cache, opts.KeyPrefix))
		if err != nil {
			return nil, nil, fmt.Errorf("creating cache backend: %w", err)
		}

		opts.Store = store
	}

	return cache.NewRegistry(opts), store, nil
}

// scopeCacheConfig copies cfg so that remote backends clear only keys under
// prefix.
func scopeCacheConfig(cfg *tdx.CacheConfig, prefix string) *tdx.CacheConfig {
	scoped := *cfg

	if cfg.Redis != nil {
		redisConfig := *cfg.Redis
		redisConfig.KeyPrefix = prefix
		scoped.Redis = &redisConfig
	}

	if cfg.NATS != nil {
		natsConfig := *cfg.NATS
		natsConfig.KeyPrefix = prefix
		scoped.NATS = &natsConfig
	}

	return &scoped
}

// New creates a new TeamDynamix API client.
func New(ctx context.Context, config *tdx.Config) (*Client, error) {
	if config == nil {
		return nil, tdx.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, tdx.ErrBaseURLRequired
	}

	timezone := config.Timezone
	if timezone == "" {
		timezone = constants.DefaultTimezone
	}

	codec, err := tdx.NewDateCodec(timezone)
	if err != nil {
		return nil, fmt.Errorf("creating date codec: %w", err)
	}

	session, err := createSession(config)
	if err != nil {
		return nil, err
	}

	registry, store, err := createRegistry(ctx, config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.BaseURL, session, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:  httpClient,
		session:     session,
		registry:    registry,
		store:       store,
		codec:       codec,
		logger:      config.Logger,
		ticketAppID: config.TicketAppID,
		assetAppID:  config.AssetAppID,
		username:    config.Username,
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client, nil
}

// initializeResourceClients wires every resource client to the shared
// dispatcher and lookup tables.
func (c *Client) initializeResourceClients() {
	if c.registry == nil {
		c.registry = cache.NewRegistry(cache.Options{Enabled: true})
	}

	if c.codec == nil {
		c.codec = tdx.UTCDateCodec()
	}

	c.people = NewPeopleClient(c.httpClient, c.registry)
	c.accounts = NewAccountsClient(c.httpClient, c.registry, c.codec)
	c.groups = NewGroupsClient(c.httpClient, c.registry)
	c.locations = NewLocationsClient(c.httpClient, c.registry)
	c.attributes = NewAttributesClient(c.httpClient, c.registry)

	c.tickets = NewTicketsClient(c.httpClient, c.registry, c.codec, c.ticketAppID, TicketDependencies{
		People:     c.people,
		Accounts:   c.accounts,
		Groups:     c.groups,
		Locations:  c.locations,
		Attributes: c.attributes,
		Requestor:  c.username,
	})

	c.assets = NewAssetsClient(c.httpClient, c.registry, c.codec, c.assetAppID, AssetDependencies{
		People:     c.people,
		Accounts:   c.accounts,
		Locations:  c.locations,
		Attributes: c.attributes,
	})
}

// Session returns the token session, or nil for an unauthenticated client.
func (c *Client) Session() *auth.Session {
	return c.session
}

// Authenticate obtains a token now rather than on the first request. The
// token persister, if any, receives it.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.session.EnsureValid(ctx) {
		return nil
	}

	return &tdx.AuthError{Username: c.session.Username(), Err: c.session.LastError()}
}

// InvalidateAll implements tdx.Client.InvalidateAll.
func (c *Client) InvalidateAll(ctx context.Context) error {
	if err := c.registry.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidating lookup tables: %w", err)
	}

	return nil
}

// DateCodec implements tdx.Client.DateCodec.
func (c *Client) DateCodec() *tdx.DateCodec {
	return c.codec
}

// Close implements tdx.Client.Close.
func (c *Client) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing cache backend: %w", err)
		}
	}

	return nil
}

// Resource client accessors

// People implements tdx.Client.People.
func (c *Client) People() tdx.PeopleClient {
	return c.people
}

// Accounts implements tdx.Client.Accounts.
func (c *Client) Accounts() tdx.AccountsClient {
	return c.accounts
}

// Groups implements tdx.Client.Groups.
func (c *Client) Groups() tdx.GroupsClient {
	return c.groups
}

// Locations implements tdx.Client.Locations.
func (c *Client) Locations() tdx.LocationsClient {
	return c.locations
}

// Attributes implements tdx.Client.Attributes.
func (c *Client) Attributes() tdx.AttributesClient {
	return c.attributes
}

// Tickets implements tdx.Client.Tickets.
func (c *Client) Tickets() tdx.TicketsClient {
	return c.tickets
}

// Assets implements tdx.Client.Assets.
func (c *Client) Assets() tdx.AssetsClient {
	return c.assets
}
