package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// PeopleClient implements tdx.PeopleClient.
type PeopleClient struct {
	httpClient *http.Client
	people     *cache.Table[tdx.Person]
}

// NewPeopleClient creates a new people client.
func NewPeopleClient(httpClient *http.Client, registry *cache.Registry) *PeopleClient {
	return &PeopleClient{
		httpClient: httpClient,
		people:     cache.NewTable[tdx.Person](registry, "person"),
	}
}

// Search implements tdx.PeopleClient.Search.
func (c *PeopleClient) Search(ctx context.Context, key string, maxResults int) ([]tdx.Person, error) {
	if maxResults <= 0 {
		maxResults = constants.DefaultPeopleSearchResults
	}

	query := url.Values{}
	query.Set("searchText", key)
	query.Set("maxResults", itoa(maxResults))

	resp, err := c.httpClient.Get(ctx, "/people/lookup", query)
	if err != nil {
		return nil, fmt.Errorf("searching people: %w", err)
	}

	return decodeList[tdx.Person](resp, "people")
}

// GetByNameEmail implements tdx.PeopleClient.GetByNameEmail. The first
// person matched by the service's lookup wins and is memoized.
func (c *PeopleClient) GetByNameEmail(ctx context.Context, key string) (*tdx.Person, error) {
	person, err := c.people.Remember(ctx, key, func(ctx context.Context) (tdx.Person, error) {
		people, err := c.Search(ctx, key, constants.DefaultPeopleSearchResults)
		if err != nil {
			return tdx.Person{}, err
		}

		if len(people) == 0 {
			return tdx.Person{}, &tdx.NotFoundError{Kind: "person", Key: key}
		}

		return people[0], nil
	})
	if err != nil {
		return nil, err
	}

	return &person, nil
}

// Get implements tdx.PeopleClient.Get.
func (c *PeopleClient) Get(ctx context.Context, uid string) (*tdx.Person, error) {
	resp, err := c.httpClient.Get(ctx, "/people/"+url.PathEscape(uid), nil)
	if err != nil {
		return nil, fmt.Errorf("getting person: %w", err)
	}

	var person tdx.Person

	if err := resp.Decode(&person); err != nil {
		return nil, fmt.Errorf("parsing person: %w", err)
	}

	return &person, nil
}
