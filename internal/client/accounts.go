package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// AccountsClient implements tdx.AccountsClient.
type AccountsClient struct {
	httpClient *http.Client
	codec      *tdx.DateCodec
	accounts   *cache.Table[tdx.Account]
}

// NewAccountsClient creates a new accounts client.
func NewAccountsClient(httpClient *http.Client, registry *cache.Registry, codec *tdx.DateCodec) *AccountsClient {
	return &AccountsClient{
		httpClient: httpClient,
		codec:      codec,
		accounts:   cache.NewTable[tdx.Account](registry, "account"),
	}
}

type accountSearch struct {
	SearchText string `json:"SearchText"`
	IsActive   bool   `json:"IsActive"`
	MaxResults int    `json:"MaxResults"`
}

// GetByName implements tdx.AccountsClient.GetByName. Active accounts are
// searched and the first whose name contains key is memoized.
func (c *AccountsClient) GetByName(ctx context.Context, key string) (*tdx.Account, error) {
	account, err := c.accounts.Remember(ctx, key, func(ctx context.Context) (tdx.Account, error) {
		resp, err := c.httpClient.Post(ctx, "/accounts/search", accountSearch{
			SearchText: key,
			IsActive:   true,
			MaxResults: constants.DefaultAccountSearchResults,
		})
		if err != nil {
			return tdx.Account{}, fmt.Errorf("searching accounts: %w", err)
		}

		accounts, err := decodeList[tdx.Account](resp, "accounts")
		if err != nil {
			return tdx.Account{}, err
		}

		match, ok := cache.Match(accounts, key)
		if !ok {
			return tdx.Account{}, &tdx.NotFoundError{Kind: "account", Key: key}
		}

		return match, nil
	})
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// Get implements tdx.AccountsClient.Get.
func (c *AccountsClient) Get(ctx context.Context, id int) (*tdx.Entity, error) {
	resp, err := c.httpClient.Get(ctx, "/accounts/"+itoa(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}

	return decodeEntity(resp, tdx.AccountSchema, c.codec)
}

// List implements tdx.AccountsClient.List.
func (c *AccountsClient) List(ctx context.Context) ([]tdx.Account, error) {
	resp, err := c.httpClient.Get(ctx, "/accounts", nil)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	return decodeList[tdx.Account](resp, "accounts")
}

// Create implements tdx.AccountsClient.Create.
func (c *AccountsClient) Create(ctx context.Context, account *tdx.Entity) (*tdx.Entity, error) {
	if account == nil || account.Kind() != tdx.EntityAccount {
		return nil, &tdx.ObjectTypeError{Expected: tdx.EntityAccount, Got: kindOf(account)}
	}

	body, err := account.Export(true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, "/accounts", body)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	return decodeEntity(resp, tdx.AccountSchema, c.codec)
}

// Edit implements tdx.AccountsClient.Edit. The current record is fetched,
// changes are applied to its editable fields and the whole record is sent.
func (c *AccountsClient) Edit(ctx context.Context, id int, changes map[string]interface{}) (*tdx.Entity, error) {
	account, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := account.Update(changes, true); err != nil {
		return nil, err
	}

	body, err := account.Export(true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Put(ctx, "/accounts/"+itoa(id), body)
	if err != nil {
		return nil, fmt.Errorf("editing account: %w", err)
	}

	return decodeEntity(resp, tdx.AccountSchema, c.codec)
}

func kindOf(e *tdx.Entity) string {
	if e == nil {
		return "nil"
	}

	return e.Kind()
}
