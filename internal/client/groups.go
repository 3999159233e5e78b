package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// GroupsClient implements tdx.GroupsClient.
type GroupsClient struct {
	httpClient *http.Client
	groups     *cache.Table[tdx.Group]
}

// NewGroupsClient creates a new groups client.
func NewGroupsClient(httpClient *http.Client, registry *cache.Registry) *GroupsClient {
	return &GroupsClient{
		httpClient: httpClient,
		groups:     cache.NewTable[tdx.Group](registry, "group"),
	}
}

type nameSearch struct {
	NameLike string `json:"NameLike"`
	IsActive bool   `json:"IsActive"`
}

// GetByName implements tdx.GroupsClient.GetByName.
func (c *GroupsClient) GetByName(ctx context.Context, key string) (*tdx.Group, error) {
	group, err := c.groups.Remember(ctx, key, func(ctx context.Context) (tdx.Group, error) {
		resp, err := c.httpClient.Post(ctx, "/groups/search", nameSearch{NameLike: key, IsActive: true})
		if err != nil {
			return tdx.Group{}, fmt.Errorf("searching groups: %w", err)
		}

		groups, err := decodeList[tdx.Group](resp, "groups")
		if err != nil {
			return tdx.Group{}, err
		}

		match, ok := cache.Match(groups, key)
		if !ok {
			return tdx.Group{}, &tdx.NotFoundError{Kind: "group", Key: key}
		}

		return match, nil
	})
	if err != nil {
		return nil, err
	}

	return &group, nil
}

// Get implements tdx.GroupsClient.Get.
func (c *GroupsClient) Get(ctx context.Context, id int) (*tdx.Group, error) {
	resp, err := c.httpClient.Get(ctx, "/groups/"+itoa(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting group: %w", err)
	}

	var group tdx.Group

	if err := resp.Decode(&group); err != nil {
		return nil, fmt.Errorf("parsing group: %w", err)
	}

	return &group, nil
}

// Members implements tdx.GroupsClient.Members.
func (c *GroupsClient) Members(ctx context.Context, id int) ([]tdx.Person, error) {
	resp, err := c.httpClient.Get(ctx, "/groups/"+itoa(id)+"/members", nil)
	if err != nil {
		return nil, fmt.Errorf("getting group members: %w", err)
	}

	return decodeList[tdx.Person](resp, "group members")
}
