package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// assetComponents are the components whose custom attributes apply to assets.
var assetComponents = []int{constants.ComponentAsset, constants.ComponentConfigurationItem}

func listAssetReference[T tdx.Named](c *AssetsClient, suffix, what string) cache.FillFunc[T] {
	return func(ctx context.Context) ([]T, error) {
		path, err := c.path(suffix)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Get(ctx, path, nil)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", what, err)
		}

		return decodeList[T](resp, what)
	}
}

func (c *AssetsClient) listStatuses(ctx context.Context) ([]tdx.AssetStatus, error) {
	return listAssetReference[tdx.AssetStatus](c, "/statuses", "asset statuses")(ctx)
}

// Status implements tdx.AssetsClient.Status.
func (c *AssetsClient) Status(ctx context.Context, key string) (*tdx.AssetStatus, error) {
	status, err := c.statuses.Lookup(ctx, key, c.listStatuses)
	if err != nil {
		return nil, err
	}

	return &status, nil
}

// Form implements tdx.AssetsClient.Form.
func (c *AssetsClient) Form(ctx context.Context, key string) (*tdx.ReferenceItem, error) {
	return lookupReference(ctx, c.forms, key, listAssetReference[tdx.ReferenceItem](c, "/forms", "asset forms"))
}

// ProductModel implements tdx.AssetsClient.ProductModel.
func (c *AssetsClient) ProductModel(ctx context.Context, key string) (*tdx.ProductModel, error) {
	model, err := c.models.Lookup(ctx, key, listAssetReference[tdx.ProductModel](c, "/models", "product models"))
	if err != nil {
		return nil, err
	}

	return &model, nil
}

// ProductType implements tdx.AssetsClient.ProductType.
func (c *AssetsClient) ProductType(ctx context.Context, key string) (*tdx.ReferenceItem, error) {
	return lookupReference(ctx, c.productTypes, key, listAssetReference[tdx.ReferenceItem](c, "/models/types", "product types"))
}

// Vendor implements tdx.AssetsClient.Vendor.
func (c *AssetsClient) Vendor(ctx context.Context, key string) (*tdx.Vendor, error) {
	vendor, err := c.vendors.Lookup(ctx, key, listAssetReference[tdx.Vendor](c, "/vendors", "vendors"))
	if err != nil {
		return nil, err
	}

	return &vendor, nil
}

// CustomAttribute implements tdx.AssetsClient.CustomAttribute. Asset and
// configuration item attributes of the asset app are searched for an exact
// name, ignoring case, or an ID.
func (c *AssetsClient) CustomAttribute(ctx context.Context, key string) (*tdx.CustomAttribute, error) {
	if attr, ok := c.attributes.Get(key); ok {
		return &attr, nil
	}

	attrs, err := c.attributes.Entries(ctx, c.listCustomAttributes)
	if err != nil {
		return nil, err
	}

	needle := strings.TrimSpace(key)

	for _, attr := range attrs {
		if attr.LookupID() == needle || strings.EqualFold(attr.Name, needle) {
			c.attributes.Put(key, attr)

			return &attr, nil
		}
	}

	return nil, &tdx.NotFoundError{Kind: c.attributes.Kind(), Key: key}
}

func (c *AssetsClient) listCustomAttributes(ctx context.Context) ([]tdx.CustomAttribute, error) {
	if c.appID == 0 {
		return nil, tdx.ErrNoAssetApp
	}

	var attrs []tdx.CustomAttribute

	for _, component := range assetComponents {
		list, err := c.deps.Attributes.List(ctx, component, 0, c.appID)
		if err != nil {
			return nil, err
		}

		attrs = append(attrs, list...)
	}

	return attrs, nil
}

// BuildCustomAttributeValue implements tdx.AssetsClient.BuildCustomAttributeValue.
func (c *AssetsClient) BuildCustomAttributeValue(
	ctx context.Context,
	key string,
	value interface{},
) (tdx.CustomAttributeValue, error) {
	attr, err := c.CustomAttribute(ctx, key)
	if err != nil {
		return tdx.CustomAttributeValue{}, err
	}

	return tdx.ResolveCustomAttributeValue(*attr, value, c.codec)
}
