package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/http"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// Ticket template defaults.
const (
	defaultClassification    = "Incident"
	defaultTicketStatus      = "New"
	defaultTicketPriority    = "Low"
	defaultTicketDescription = "Auto-generated Ticket"
)

// TicketDependencies are the lookups a ticket client resolves template
// fields through.
type TicketDependencies struct {
	People     tdx.PeopleClient
	Accounts   tdx.AccountsClient
	Groups     tdx.GroupsClient
	Locations  tdx.LocationsClient
	Attributes tdx.AttributesClient
	// Requestor is the default requestor of built tickets, usually the
	// authenticated username.
	Requestor string
}

// TicketsClient implements tdx.TicketsClient.
type TicketsClient struct {
	httpClient *http.Client
	codec      *tdx.DateCodec
	appID      int
	deps       TicketDependencies

	types      *cache.Table[tdx.TicketType]
	statuses   *cache.Table[tdx.TicketStatus]
	priorities *cache.Table[tdx.ReferenceItem]
	urgencies  *cache.Table[tdx.ReferenceItem]
	impacts    *cache.Table[tdx.ReferenceItem]
	sources    *cache.Table[tdx.ReferenceItem]
	forms      *cache.Table[tdx.ReferenceItem]
}

// NewTicketsClient creates a new tickets client for the ticketing app appID.
func NewTicketsClient(
	httpClient *http.Client,
	registry *cache.Registry,
	codec *tdx.DateCodec,
	appID int,
	deps TicketDependencies,
) *TicketsClient {
	return &TicketsClient{
		httpClient: httpClient,
		codec:      codec,
		appID:      appID,
		deps:       deps,
		types:      cache.NewTable[tdx.TicketType](registry, "ticket type"),
		statuses:   cache.NewTable[tdx.TicketStatus](registry, "ticket status"),
		priorities: cache.NewTable[tdx.ReferenceItem](registry, "ticket priority"),
		urgencies:  cache.NewTable[tdx.ReferenceItem](registry, "ticket urgency"),
		impacts:    cache.NewTable[tdx.ReferenceItem](registry, "ticket impact"),
		sources:    cache.NewTable[tdx.ReferenceItem](registry, "ticket source"),
		forms:      cache.NewTable[tdx.ReferenceItem](registry, "ticket form"),
	}
}

// path returns the ticket app path for suffix.
func (c *TicketsClient) path(suffix string) (string, error) {
	if c.appID == 0 {
		return "", tdx.ErrNoTicketApp
	}

	return "/" + itoa(c.appID) + "/tickets" + suffix, nil
}

// Get implements tdx.TicketsClient.Get.
func (c *TicketsClient) Get(ctx context.Context, id int) (*tdx.Entity, error) {
	path, err := c.path("/" + itoa(id))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting ticket: %w", err)
	}

	return decodeEntity(resp, tdx.TicketSchema, c.codec)
}

// Search implements tdx.TicketsClient.Search.
func (c *TicketsClient) Search(ctx context.Context, opts tdx.TicketSearchOptions) ([]*tdx.Entity, error) {
	path, err := c.path("/search")
	if err != nil {
		return nil, err
	}

	names := append([]string(nil), constants.DefaultTicketStatuses...)

	if opts.Closed {
		names = append(names, "Closed")
	}

	if opts.Cancelled {
		names = append(names, "Cancelled")
	}

	names = append(names, opts.OtherStatuses...)

	statusIDs := make([]int, 0, len(names))

	for _, name := range names {
		status, err := c.Status(ctx, name)
		if err != nil {
			return nil, err
		}

		statusIDs = append(statusIDs, status.ID)
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = constants.DefaultSearchResults
	}

	body := map[string]interface{}{
		"MaxResults": maxResults,
		"StatusIDs":  statusIDs,
	}

	if opts.SearchText != "" {
		body["SearchText"] = opts.SearchText
	}

	for k, v := range opts.Criteria {
		body[k] = v
	}

	resp, err := c.httpClient.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("searching tickets: %w", err)
	}

	return decodeEntities(resp, tdx.TicketSchema, c.codec)
}

// Edit implements tdx.TicketsClient.Edit. Only editable fields may change;
// the caller's entity is left untouched and the saved ticket is returned.
func (c *TicketsClient) Edit(
	ctx context.Context,
	ticket *tdx.Entity,
	changes map[string]interface{},
	notifyNewResponsible bool,
) (*tdx.Entity, error) {
	if !tdx.IsTicket(ticket) {
		return nil, &tdx.ObjectTypeError{Expected: tdx.EntityTicket, Got: kindOf(ticket)}
	}

	id, err := entityID(ticket)
	if err != nil {
		return nil, err
	}

	path, err := c.path("/" + itoa(id))
	if err != nil {
		return nil, err
	}

	edited := ticket.Clone()
	if err := edited.Update(changes, true); err != nil {
		return nil, err
	}

	body, err := edited.Export(true)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("notifyNewResponsible", strconv.FormatBool(notifyNewResponsible))

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   path,
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("editing ticket %d: %w", id, err)
	}

	return decodeEntity(resp, tdx.TicketSchema, c.codec)
}

// EditMany implements tdx.TicketsClient.EditMany. Every entity is checked
// before the first edit is sent.
func (c *TicketsClient) EditMany(
	ctx context.Context,
	tickets []*tdx.Entity,
	changes map[string]interface{},
	notifyNewResponsible bool,
) ([]*tdx.Entity, error) {
	for _, ticket := range tickets {
		if !tdx.IsTicket(ticket) {
			return nil, &tdx.ObjectTypeError{Expected: tdx.EntityTicket, Got: kindOf(ticket)}
		}
	}

	out := make([]*tdx.Entity, 0, len(tickets))

	for _, ticket := range tickets {
		edited, err := c.Edit(ctx, ticket, changes, notifyNewResponsible)
		if err != nil {
			return out, err
		}

		out = append(out, edited)
	}

	return out, nil
}

// Create implements tdx.TicketsClient.Create. A silent create notifies
// neither the requestor nor the responsible party.
func (c *TicketsClient) Create(ctx context.Context, ticket *tdx.Entity, silent bool) (*tdx.Entity, error) {
	if !tdx.IsTicket(ticket) {
		return nil, &tdx.ObjectTypeError{Expected: tdx.EntityTicket, Got: kindOf(ticket)}
	}

	path, err := c.path("")
	if err != nil {
		return nil, err
	}

	body, err := ticket.Export(true)
	if err != nil {
		return nil, err
	}

	notify := strconv.FormatBool(!silent)

	query := url.Values{}
	query.Set("EnableNotifyReviewer", "false")
	query.Set("NotifyRequestor", notify)
	query.Set("NotifyResponsible", notify)
	query.Set("AllowRequestorCreation", "false")

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: "POST",
		Path:   path,
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}

	return decodeEntity(resp, tdx.TicketSchema, c.codec)
}

// Build implements tdx.TicketsClient.Build. Reference fields of the template
// are resolved through the lookup tables and the result is validated but not
// sent.
//
//nolint:funlen,cyclop
func (c *TicketsClient) Build(ctx context.Context, tpl *tdx.TicketTemplate) (*tdx.Entity, error) {
	if tpl == nil {
		return nil, &tdx.ObjectTypeError{Expected: "ticket template", Got: "nil"}
	}

	fields := map[string]interface{}{
		"Title":       tpl.Title,
		"Description": valueOr(tpl.Description, defaultTicketDescription),
	}

	if tpl.Type != "" {
		ticketType, err := c.Type(ctx, tpl.Type)
		if err != nil {
			return nil, err
		}

		fields["TypeID"] = ticketType.ID
	}

	classification, err := classificationID(valueOr(tpl.Classification, defaultClassification))
	if err != nil {
		return nil, err
	}

	fields["Classification"] = classification

	if tpl.Account != "" {
		account, err := c.deps.Accounts.GetByName(ctx, tpl.Account)
		if err != nil {
			return nil, err
		}

		fields["AccountID"] = account.ID
	}

	status, err := c.Status(ctx, valueOr(tpl.Status, defaultTicketStatus))
	if err != nil {
		return nil, err
	}

	fields["StatusID"] = status.ID

	priority, err := c.Priority(ctx, valueOr(tpl.Priority, defaultTicketPriority))
	if err != nil {
		return nil, err
	}

	fields["PriorityID"] = priority.ID

	if requestor := valueOr(tpl.Requestor, c.deps.Requestor); requestor != "" {
		person, err := c.deps.People.GetByNameEmail(ctx, requestor)
		if err != nil {
			return nil, err
		}

		fields["RequestorUid"] = person.UID
	}

	if tpl.FormID != 0 {
		fields["FormID"] = tpl.FormID
	}

	if err := c.resolveResponsible(ctx, tpl.Responsible, fields); err != nil {
		return nil, err
	}

	if err := c.resolveLocation(ctx, tpl.Location, tpl.Room, fields); err != nil {
		return nil, err
	}

	if !tpl.StartDate.IsZero() {
		fields["StartDate"] = tpl.StartDate
	}

	if !tpl.EndDate.IsZero() {
		fields["EndDate"] = tpl.EndDate
	}

	if len(tpl.CustomAttributes) > 0 {
		values, err := c.customAttributeValues(ctx, tpl.CustomAttributes)
		if err != nil {
			return nil, err
		}

		fields["Attributes"] = tdx.AttributeList(values)
	}

	ticket := tdx.NewTicket(c.codec)
	if err := ticket.Update(fields, false); err != nil {
		return nil, err
	}

	if err := ticket.Validate(); err != nil {
		return nil, err
	}

	return ticket, nil
}

// resolveResponsible assigns a person when responsible looks like an email
// address and a group otherwise.
func (c *TicketsClient) resolveResponsible(ctx context.Context, responsible string, fields map[string]interface{}) error {
	if responsible == "" {
		return nil
	}

	if strings.Contains(responsible, "@") {
		person, err := c.deps.People.GetByNameEmail(ctx, responsible)
		if err != nil {
			return err
		}

		fields["ResponsibleUid"] = person.UID

		return nil
	}

	group, err := c.deps.Groups.GetByName(ctx, responsible)
	if err != nil {
		return err
	}

	fields["ResponsibleGroupID"] = group.ID

	return nil
}

func (c *TicketsClient) resolveLocation(ctx context.Context, location, room string, fields map[string]interface{}) error {
	if location == "" {
		return nil
	}

	loc, err := c.deps.Locations.GetByName(ctx, location)
	if err != nil {
		return err
	}

	fields["LocationID"] = loc.ID

	if room == "" {
		return nil
	}

	r, err := c.deps.Locations.RoomByName(loc, room)
	if err != nil {
		return err
	}

	fields["LocationRoomID"] = r.ID

	return nil
}

// customAttributeValues resolves template attributes in name order.
func (c *TicketsClient) customAttributeValues(ctx context.Context, attrs map[string]interface{}) ([]tdx.CustomAttributeValue, error) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}

	sort.Strings(names)

	values := make([]tdx.CustomAttributeValue, 0, len(names))

	for _, name := range names {
		attr, err := c.deps.Attributes.GetByName(ctx, constants.ComponentTicket, name)
		if err != nil {
			return nil, err
		}

		value, err := tdx.ResolveCustomAttributeValue(*attr, attrs[name], c.codec)
		if err != nil {
			return nil, err
		}

		values = append(values, value)
	}

	return values, nil
}

// UploadAttachment implements tdx.TicketsClient.UploadAttachment.
func (c *TicketsClient) UploadAttachment(
	ctx context.Context,
	ticketID int,
	filename string,
	content io.Reader,
) (*tdx.Attachment, error) {
	path, err := c.path("/" + itoa(ticketID) + "/attachments")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Upload(ctx, path, filename, content)
	if err != nil {
		return nil, fmt.Errorf("uploading ticket attachment: %w", err)
	}

	var attachment tdx.Attachment

	if err := resp.Decode(&attachment); err != nil {
		return nil, fmt.Errorf("parsing attachment: %w", err)
	}

	return &attachment, nil
}

// classificationID accepts a classification name or its numeric ID.
func classificationID(key string) (int, error) {
	for name, id := range constants.Classifications {
		if strings.EqualFold(name, key) {
			return id, nil
		}
	}

	if id, err := strconv.Atoi(strings.TrimSpace(key)); err == nil {
		for _, known := range constants.Classifications {
			if known == id {
				return id, nil
			}
		}
	}

	return 0, &tdx.NotFoundError{Kind: "classification", Key: key}
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
