package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// AssetDependencies are the lookups an asset client resolves names through.
type AssetDependencies struct {
	People     tdx.PeopleClient
	Accounts   tdx.AccountsClient
	Locations  tdx.LocationsClient
	Attributes tdx.AttributesClient
}

// AssetsClient implements tdx.AssetsClient.
type AssetsClient struct {
	httpClient *http.Client
	codec      *tdx.DateCodec
	appID      int
	deps       AssetDependencies

	statuses     *cache.Table[tdx.AssetStatus]
	forms        *cache.Table[tdx.ReferenceItem]
	models       *cache.Table[tdx.ProductModel]
	productTypes *cache.Table[tdx.ReferenceItem]
	vendors      *cache.Table[tdx.Vendor]
	attributes   *cache.Table[tdx.CustomAttribute]
}

// NewAssetsClient creates a new assets client for the asset app appID.
func NewAssetsClient(
	httpClient *http.Client,
	registry *cache.Registry,
	codec *tdx.DateCodec,
	appID int,
	deps AssetDependencies,
) *AssetsClient {
	return &AssetsClient{
		httpClient:   httpClient,
		codec:        codec,
		appID:        appID,
		deps:         deps,
		statuses:     cache.NewTable[tdx.AssetStatus](registry, "asset status"),
		forms:        cache.NewTable[tdx.ReferenceItem](registry, "asset form"),
		models:       cache.NewTable[tdx.ProductModel](registry, "product model"),
		productTypes: cache.NewTable[tdx.ReferenceItem](registry, "product type"),
		vendors:      cache.NewTable[tdx.Vendor](registry, "vendor"),
		attributes:   cache.NewTable[tdx.CustomAttribute](registry, "asset custom attribute"),
	}
}

// path returns the asset app path for suffix.
func (c *AssetsClient) path(suffix string) (string, error) {
	if c.appID == 0 {
		return "", tdx.ErrNoAssetApp
	}

	return "/" + itoa(c.appID) + "/assets" + suffix, nil
}

// Get implements tdx.AssetsClient.Get.
func (c *AssetsClient) Get(ctx context.Context, id int) (*tdx.Entity, error) {
	path, err := c.path("/" + itoa(id))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}

	return decodeEntity(resp, tdx.AssetSchema, c.codec)
}

// Search implements tdx.AssetsClient.Search. StatusIDs given in Criteria
// replace the status selection made by the options.
func (c *AssetsClient) Search(ctx context.Context, opts tdx.AssetSearchOptions) ([]*tdx.Entity, error) {
	path, err := c.path("/search")
	if err != nil {
		return nil, err
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = constants.DefaultSearchResults
	}

	body := map[string]interface{}{"MaxResults": maxResults}

	if opts.SearchText != "" {
		body["SearchText"] = opts.SearchText
	}

	if _, ok := opts.Criteria["StatusIDs"]; !ok {
		statusIDs, err := c.searchStatusIDs(ctx, opts)
		if err != nil {
			return nil, err
		}

		body["StatusIDs"] = statusIDs
	}

	for k, v := range opts.Criteria {
		body[k] = v
	}

	resp, err := c.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("searching assets: %w", err)
	}

	assets, err := decodeEntities(resp, tdx.AssetSchema, c.codec)
	if err != nil {
		return nil, err
	}

	if !opts.FullRecord {
		return assets, nil
	}

	full := make([]*tdx.Entity, 0, len(assets))

	for _, asset := range assets {
		id, err := entityID(asset)
		if err != nil {
			return nil, err
		}

		record, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		full = append(full, record)
	}

	return full, nil
}

func (c *AssetsClient) searchStatusIDs(ctx context.Context, opts tdx.AssetSearchOptions) ([]int, error) {
	if opts.AllStatuses {
		statuses, err := c.statuses.Entries(ctx, c.listStatuses)
		if err != nil {
			return nil, err
		}

		ids := make([]int, 0, len(statuses))
		for _, s := range statuses {
			ids = append(ids, s.ID)
		}

		return ids, nil
	}

	names := append([]string(nil), constants.DefaultAssetStatuses...)

	if opts.Retired {
		names = append(names, "Retired")
	}

	if opts.Disposed {
		names = append(names, "Disposed")
	}

	names = append(names, opts.OtherStatuses...)

	ids := make([]int, 0, len(names))

	for _, name := range names {
		status, err := c.Status(ctx, name)
		if err != nil {
			return nil, err
		}

		ids = append(ids, status.ID)
	}

	return ids, nil
}

// FindByTag implements tdx.AssetsClient.FindByTag. Leading zeros are not
// significant. A sole search hit is returned as is; otherwise the hit whose
// tag matches exactly wins.
func (c *AssetsClient) FindByTag(ctx context.Context, tag string) (*tdx.Entity, error) {
	tag = strings.TrimLeft(strings.TrimSpace(tag), "0")

	assets, err := c.Search(ctx, tdx.AssetSearchOptions{SearchText: tag, AllStatuses: true})
	if err != nil {
		return nil, err
	}

	if len(assets) == 1 {
		return assets[0], nil
	}

	for _, asset := range assets {
		if strings.TrimLeft(asset.StringField("Tag"), "0") == tag {
			return asset, nil
		}
	}

	return nil, &tdx.NotFoundError{Kind: "asset", Key: tag, Scope: fmt.Sprintf("%d search results", len(assets))}
}

// FindBySerial implements tdx.AssetsClient.FindBySerial.
func (c *AssetsClient) FindBySerial(ctx context.Context, serial string) ([]*tdx.Entity, error) {
	assets, err := c.Search(ctx, tdx.AssetSearchOptions{
		AllStatuses: true,
		Criteria:    map[string]interface{}{"SerialLike": serial},
	})
	if err != nil {
		return nil, err
	}

	if len(assets) == 0 {
		return nil, &tdx.NotFoundError{Kind: "asset", Key: serial}
	}

	return assets, nil
}

// Update implements tdx.AssetsClient.Update. Each asset is fetched in full,
// custom attributes in changes are merged by ID into the current ones (or
// replace them when clearCustomAttributes is set) and the whole record is
// saved.
func (c *AssetsClient) Update(
	ctx context.Context,
	ids []int,
	changes map[string]interface{},
	clearCustomAttributes bool,
) ([]*tdx.Entity, error) {
	fieldChanges := make(map[string]interface{}, len(changes))

	for k, v := range changes {
		if k != "Attributes" {
			fieldChanges[k] = v
		}
	}

	var updates []tdx.CustomAttributeValue

	if raw, ok := changes["Attributes"]; ok && raw != nil {
		items, err := attributeItems(raw)
		if err != nil {
			return nil, err
		}

		updates, err = tdx.CustomAttributeValues(items)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*tdx.Entity, 0, len(ids))

	for _, id := range ids {
		saved, err := c.updateOne(ctx, id, fieldChanges, updates, clearCustomAttributes)
		if err != nil {
			return out, err
		}

		out = append(out, saved)
	}

	return out, nil
}

func (c *AssetsClient) updateOne(
	ctx context.Context,
	id int,
	changes map[string]interface{},
	updates []tdx.CustomAttributeValue,
	clearCustomAttributes bool,
) (*tdx.Entity, error) {
	asset, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var current []tdx.CustomAttributeValue

	if v, ok := asset.Get("Attributes"); ok {
		current, err = tdx.CustomAttributeValues(v.List())
		if err != nil {
			return nil, err
		}
	}

	merged := tdx.MergeCustomAttributes(current, updates, clearCustomAttributes)

	if err := asset.Update(changes, true); err != nil {
		return nil, err
	}

	body, err := asset.Export(true)
	if err != nil {
		return nil, err
	}

	// An empty list is sent so that clearing reaches the service.
	body["Attributes"] = tdx.AttributeList(merged)

	path, err := c.path("/" + itoa(id))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("updating asset %d: %w", id, err)
	}

	return decodeEntity(resp, tdx.AssetSchema, c.codec)
}

// Create implements tdx.AssetsClient.Create. With checkDuplicate set, an
// asset sharing the serial number fails with a DuplicateError.
func (c *AssetsClient) Create(ctx context.Context, asset *tdx.Entity, checkDuplicate bool) (*tdx.Entity, error) {
	if !tdx.IsAsset(asset) {
		return nil, &tdx.ObjectTypeError{Expected: tdx.EntityAsset, Got: kindOf(asset)}
	}

	path, err := c.path("")
	if err != nil {
		return nil, err
	}

	body, err := asset.Export(true)
	if err != nil {
		return nil, err
	}

	if serial := asset.StringField("SerialNumber"); checkDuplicate && serial != "" {
		_, err := c.FindBySerial(ctx, serial)

		switch {
		case err == nil:
			return nil, &tdx.DuplicateError{Kind: "asset with serial number", Key: serial}
		case !tdx.IsNotFound(err):
			return nil, err
		}
	}

	resp, err := c.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("creating asset: %w", err)
	}

	return decodeEntity(resp, tdx.AssetSchema, c.codec)
}

// ChangeOwner implements tdx.AssetsClient.ChangeOwner.
func (c *AssetsClient) ChangeOwner(ctx context.Context, ids []int, person string) ([]*tdx.Entity, error) {
	owner, err := c.deps.People.GetByNameEmail(ctx, person)
	if err != nil {
		return nil, err
	}

	return c.Update(ctx, ids, map[string]interface{}{"OwningCustomerID": owner.UID}, false)
}

// ChangeLocation implements tdx.AssetsClient.ChangeLocation. An empty room
// leaves the room unchanged.
func (c *AssetsClient) ChangeLocation(ctx context.Context, ids []int, location, room string) ([]*tdx.Entity, error) {
	loc, err := c.deps.Locations.GetByName(ctx, location)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{"LocationID": loc.ID}

	if room != "" {
		r, err := c.deps.Locations.RoomByName(loc, room)
		if err != nil {
			return nil, err
		}

		changes["LocationRoomID"] = r.ID
	}

	return c.Update(ctx, ids, changes, false)
}

// ChangeRequestingDepartment implements tdx.AssetsClient.ChangeRequestingDepartment.
func (c *AssetsClient) ChangeRequestingDepartment(ctx context.Context, ids []int, account string) ([]*tdx.Entity, error) {
	dept, err := c.deps.Accounts.GetByName(ctx, account)
	if err != nil {
		return nil, err
	}

	return c.Update(ctx, ids, map[string]interface{}{"RequestingDepartmentID": dept.ID}, false)
}

// Users implements tdx.AssetsClient.Users.
func (c *AssetsClient) Users(ctx context.Context, id int) ([]tdx.ResourceItem, error) {
	path, err := c.path("/" + itoa(id) + "/users")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing asset users: %w", err)
	}

	return decodeList[tdx.ResourceItem](resp, "asset users")
}

// AddUser implements tdx.AssetsClient.AddUser.
func (c *AssetsClient) AddUser(ctx context.Context, id int, uid string) error {
	path, err := c.path("/" + itoa(id) + "/users/" + url.PathEscape(uid))
	if err != nil {
		return err
	}

	if _, err := c.httpClient.Post(ctx, path, map[string]interface{}{}); err != nil {
		return fmt.Errorf("adding asset user: %w", err)
	}

	return nil
}

// RemoveUser implements tdx.AssetsClient.RemoveUser.
func (c *AssetsClient) RemoveUser(ctx context.Context, id int, uid string) error {
	path, err := c.path("/" + itoa(id) + "/users/" + url.PathEscape(uid))
	if err != nil {
		return err
	}

	if _, err := c.httpClient.Delete(ctx, path); err != nil {
		return fmt.Errorf("removing asset user: %w", err)
	}

	return nil
}

// UploadAttachment implements tdx.AssetsClient.UploadAttachment.
func (c *AssetsClient) UploadAttachment(
	ctx context.Context,
	assetID int,
	filename string,
	content io.Reader,
) (*tdx.Attachment, error) {
	path, err := c.path("/" + itoa(assetID) + "/attachments")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Upload(ctx, path, filename, content)
	if err != nil {
		return nil, fmt.Errorf("uploading asset attachment: %w", err)
	}

	var attachment tdx.Attachment

	if err := resp.Decode(&attachment); err != nil {
		return nil, fmt.Errorf("parsing attachment: %w", err)
	}

	return &attachment, nil
}

// attributeItems accepts the custom attribute forms a caller may pass in
// changes.
func attributeItems(raw interface{}) ([]interface{}, error) {
	switch v := raw.(type) {
	case []interface{}:
		return v, nil
	case []tdx.CustomAttributeValue:
		return tdx.AttributeList(v), nil
	case []map[string]interface{}:
		items := make([]interface{}, 0, len(v))
		for _, m := range v {
			items = append(items, m)
		}

		return items, nil
	default:
		return nil, &tdx.ObjectTypeError{Expected: "list of custom attributes", Got: fmt.Sprintf("%T", raw)}
	}
}
