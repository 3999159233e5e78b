package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// AttributesClient implements tdx.AttributesClient.
type AttributesClient struct {
	httpClient  *http.Client
	byComponent *cache.Keyed[tdx.CustomAttribute]
}

// NewAttributesClient creates a new custom attributes client.
func NewAttributesClient(httpClient *http.Client, registry *cache.Registry) *AttributesClient {
	return &AttributesClient{
		httpClient:  httpClient,
		byComponent: cache.NewKeyed[tdx.CustomAttribute](registry, "custom attribute"),
	}
}

// List implements tdx.AttributesClient.List. A zero associatedTypeID or appID
// is omitted from the query.
func (c *AttributesClient) List(ctx context.Context, componentID, associatedTypeID, appID int) ([]tdx.CustomAttribute, error) {
	query := url.Values{}
	query.Set("componentId", itoa(componentID))

	if associatedTypeID != 0 {
		query.Set("associatedTypeId", itoa(associatedTypeID))
	}

	if appID != 0 {
		query.Set("appId", itoa(appID))
	}

	resp, err := c.httpClient.Get(ctx, "/attributes/custom", query)
	if err != nil {
		return nil, fmt.Errorf("listing custom attributes: %w", err)
	}

	return decodeList[tdx.CustomAttribute](resp, "custom attributes")
}

// GetByName implements tdx.AttributesClient.GetByName.
func (c *AttributesClient) GetByName(ctx context.Context, componentID int, key string) (*tdx.CustomAttribute, error) {
	table := c.byComponent.For(itoa(componentID))

	attr, err := table.Lookup(ctx, key, func(ctx context.Context) ([]tdx.CustomAttribute, error) {
		return c.List(ctx, componentID, 0, 0)
	})
	if err != nil {
		return nil, err
	}

	return &attr, nil
}

// ChoiceByName implements tdx.AttributesClient.ChoiceByName.
func (c *AttributesClient) ChoiceByName(attr *tdx.CustomAttribute, key string) (*tdx.Choice, error) {
	if attr == nil {
		return nil, &tdx.ObjectTypeError{Expected: "custom attribute", Got: "nil"}
	}

	choice, err := tdx.FindChoice(*attr, key)
	if err != nil {
		return nil, err
	}

	return &choice, nil
}
