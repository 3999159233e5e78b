package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// LocationsClient implements tdx.LocationsClient.
type LocationsClient struct {
	httpClient *http.Client
	locations  *cache.Table[tdx.Location]
}

// NewLocationsClient creates a new locations client.
func NewLocationsClient(httpClient *http.Client, registry *cache.Registry) *LocationsClient {
	return &LocationsClient{
		httpClient: httpClient,
		locations:  cache.NewTable[tdx.Location](registry, "location"),
	}
}

// GetByName implements tdx.LocationsClient.GetByName. Search results carry
// no rooms, so the matched location is fetched in full before it is memoized.
func (c *LocationsClient) GetByName(ctx context.Context, key string) (*tdx.Location, error) {
	location, err := c.locations.Remember(ctx, key, func(ctx context.Context) (tdx.Location, error) {
		resp, err := c.httpClient.Post(ctx, "/locations/search", nameSearch{NameLike: key, IsActive: true})
		if err != nil {
			return tdx.Location{}, fmt.Errorf("searching locations: %w", err)
		}

		locations, err := decodeList[tdx.Location](resp, "locations")
		if err != nil {
			return tdx.Location{}, err
		}

		match, ok := cache.Match(locations, key)
		if !ok {
			return tdx.Location{}, &tdx.NotFoundError{Kind: "location", Key: key}
		}

		full, err := c.Get(ctx, match.ID)
		if err != nil {
			return tdx.Location{}, err
		}

		return *full, nil
	})
	if err != nil {
		return nil, err
	}

	return &location, nil
}

// Get implements tdx.LocationsClient.Get.
func (c *LocationsClient) Get(ctx context.Context, id int) (*tdx.Location, error) {
	resp, err := c.httpClient.Get(ctx, "/locations/"+itoa(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}

	var location tdx.Location

	if err := resp.Decode(&location); err != nil {
		return nil, fmt.Errorf("parsing location: %w", err)
	}

	return &location, nil
}

// List implements tdx.LocationsClient.List.
func (c *LocationsClient) List(ctx context.Context) ([]tdx.Location, error) {
	resp, err := c.httpClient.Get(ctx, "/locations", nil)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}

	return decodeList[tdx.Location](resp, "locations")
}

// RoomByName implements tdx.LocationsClient.RoomByName.
func (c *LocationsClient) RoomByName(location *tdx.Location, key string) (*tdx.Room, error) {
	if location == nil {
		return nil, &tdx.ObjectTypeError{Expected: "location", Got: "nil"}
	}

	room, ok := cache.Match(location.Rooms, key)
	if !ok {
		return nil, &tdx.NotFoundError{Kind: "room", Key: key, Scope: location.Name}
	}

	return &room, nil
}
