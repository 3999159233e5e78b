package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdx-client/internal/cache"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// listReference returns a fill that GETs a reference list under the ticket app.
func listReference[T tdx.Named](c *TicketsClient, suffix, what string) cache.FillFunc[T] {
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

func lookupReference(
	ctx context.Context,
	table *cache.Table[tdx.ReferenceItem],
	key string,
	fill cache.FillFunc[tdx.ReferenceItem],
) (*tdx.ReferenceItem, error) {
	item, err := table.Lookup(ctx, key, fill)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Type implements tdx.TicketsClient.Type.
func (c *TicketsClient) Type(ctx context.Context, key string) (*tdx.TicketType, error) {
	ticketType, err := c.types.Lookup(ctx, key, listReference[tdx.TicketType](c, "/types", "ticket types"))
	if err != nil {
		return nil, err
	}

	return &ticketType, nil
}

type statusSearch struct {
	SearchText string `json:"SearchText"`
}

// Status implements tdx.TicketsClient.Status. The service's first search
// result is memoized under key and under its own name.
func (c *TicketsClient) Status(ctx context.Context, key string) (*tdx.TicketStatus, error) {
	status, err := c.statuses.Remember(ctx, key, func(ctx context.Context) (tdx.TicketStatus, error) {
		path, err := c.path("/statuses/search")
		if err != nil {
			return tdx.TicketStatus{}, err
		}

		resp, err := c.httpClient.Post(ctx, path, statusSearch{SearchText: key})
		if err != nil {
			return tdx.TicketStatus{}, fmt.Errorf("searching ticket statuses: %w", err)
		}

		statuses, err := decodeList[tdx.TicketStatus](resp, "ticket statuses")
		if err != nil {
			return tdx.TicketStatus{}, err
		}

		if len(statuses) == 0 {
			return tdx.TicketStatus{}, &tdx.NotFoundError{Kind: "ticket status", Key: key}
		}

		return statuses[0], nil
	})
	if err != nil {
		return nil, err
	}

	return &status, nil
}

// StatusByID implements tdx.TicketsClient.StatusByID.
func (c *TicketsClient) StatusByID(ctx context.Context, id int) (*tdx.TicketStatus, error) {
	status, err := c.statuses.Remember(ctx, itoa(id), func(ctx context.Context) (tdx.TicketStatus, error) {
		path, err := c.path("/statuses/" + itoa(id))
		if err != nil {
			return tdx.TicketStatus{}, err
		}

		resp, err := c.httpClient.Get(ctx, path, nil)
		if err != nil {
			return tdx.TicketStatus{}, fmt.Errorf("getting ticket status: %w", err)
		}

		var status tdx.TicketStatus

		if err := resp.Decode(&status); err != nil {
			return tdx.TicketStatus{}, fmt.Errorf("parsing ticket status: %w", err)
		}

		return status, nil
	})
	if err != nil {
		return nil, err
	}

	return &status, nil
}

// Priority implements tdx.TicketsClient.Priority.
func (c *TicketsClient) Priority(ctx context.Context, key string) (*tdx.ReferenceItem, error) {
	return lookupReference(ctx, c.priorities, key, listReference[tdx.ReferenceItem](c, "/priorities", "ticket priorities"))
}

// Urgency implements tdx.TicketsClient.Urgency.
func (c *TicketsClient) Urgency(ctx context.Context, key string) (*tdx.ReferenceItem, error) {
	return lookupReference(ctx, c.urgencies, key, listReference[tdx.ReferenceItem](c, "/urgencies", "ticket urgencies"))
}

// Impact implements tdx.TicketsClient.Impact.
func (c *TicketsClient) Impact(ctx context.Context, key string) (*tdx.ReferenceItem, error) {
	return lookupReference(ctx, c.impacts, key, listReference[tdx.ReferenceItem](c, "/impacts", "ticket impacts"))
}

// Source implements tdx.TicketsClient.Source.
func (c *TicketsClient) Source(ctx context.Context, key string) (*tdx.ReferenceItem, error) {
	return lookupReference(ctx, c.sources, key, listReference[tdx.ReferenceItem](c, "/sources", "ticket sources"))
}

// Form implements tdx.TicketsClient.Form.
func (c *TicketsClient) Form(ctx context.Context, key string) (*tdx.ReferenceItem, error) {
	return lookupReference(ctx, c.forms, key, listReference[tdx.ReferenceItem](c, "/forms", "ticket forms"))
}

// setField applies one reference ID to every ticket.
func (c *TicketsClient) setField(ctx context.Context, tickets []*tdx.Entity, field string, id int) ([]*tdx.Entity, error) {
	return c.EditMany(ctx, tickets, map[string]interface{}{field: id}, false)
}

// SetType implements tdx.TicketsClient.SetType.
func (c *TicketsClient) SetType(ctx context.Context, tickets []*tdx.Entity, key string) ([]*tdx.Entity, error) {
	ticketType, err := c.Type(ctx, key)
	if err != nil {
		return nil, err
	}

	return c.setField(ctx, tickets, "TypeID", ticketType.ID)
}

// SetStatus implements tdx.TicketsClient.SetStatus.
func (c *TicketsClient) SetStatus(ctx context.Context, tickets []*tdx.Entity, key string) ([]*tdx.Entity, error) {
	status, err := c.Status(ctx, key)
	if err != nil {
		return nil, err
	}

	return c.setField(ctx, tickets, "StatusID", status.ID)
}

// SetPriority implements tdx.TicketsClient.SetPriority.
func (c *TicketsClient) SetPriority(ctx context.Context, tickets []*tdx.Entity, key string) ([]*tdx.Entity, error) {
	priority, err := c.Priority(ctx, key)
	if err != nil {
		return nil, err
	}

	return c.setField(ctx, tickets, "PriorityID", priority.ID)
}

// SetUrgency implements tdx.TicketsClient.SetUrgency.
func (c *TicketsClient) SetUrgency(ctx context.Context, tickets []*tdx.Entity, key string) ([]*tdx.Entity, error) {
	urgency, err := c.Urgency(ctx, key)
	if err != nil {
		return nil, err
	}

	return c.setField(ctx, tickets, "UrgencyID", urgency.ID)
}

// SetImpact implements tdx.TicketsClient.SetImpact.
func (c *TicketsClient) SetImpact(ctx context.Context, tickets []*tdx.Entity, key string) ([]*tdx.Entity, error) {
	impact, err := c.Impact(ctx, key)
	if err != nil {
		return nil, err
	}

	return c.setField(ctx, tickets, "ImpactID", impact.ID)
}

// SetSource implements tdx.TicketsClient.SetSource.
func (c *TicketsClient) SetSource(ctx context.Context, tickets []*tdx.Entity, key string) ([]*tdx.Entity, error) {
	source, err := c.Source(ctx, key)
	if err != nil {
		return nil, err
	}

	return c.setField(ctx, tickets, "SourceID", source.ID)
}
