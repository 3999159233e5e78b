package client_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	. "github.com/fivetwenty-io/tdx-client/internal/client"
	"github.com/fivetwenty-io/tdx-client/internal/tdxtest"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ticketsPath = "/40/tickets"

func statusIDs(t *testing.T, req tdxtest.RecordedRequest) []int {
	t.Helper()

	raw, ok := req.JSON()["StatusIDs"].([]interface{})
	require.True(t, ok, "StatusIDs missing from search body")

	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, int(v.(float64)))
	}

	return ids
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTicketsSearch(t *testing.T) {
	t.Parallel()

	t.Run("default statuses only", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		tickets, err := client.Tickets().Search(context.Background(), tdx.TicketSearchOptions{})
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, "Printer offline", tickets[0].StringField("Title"))

		req, ok := server.LastRequest(http.MethodPost, ticketsPath+"/search")
		require.True(t, ok)
		assert.ElementsMatch(t, []int{21, 22, 23}, statusIDs(t, req))
		assert.InDelta(t, 25, req.JSON()["MaxResults"], 0)
		assert.NotContains(t, req.JSON(), "SearchText")
	})

	t.Run("closed and extra statuses", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		tickets, err := client.Tickets().Search(context.Background(), tdx.TicketSearchOptions{
			Closed:        true,
			Cancelled:     true,
			OtherStatuses: []string{"Resolved"},
			MaxResults:    10,
		})
		require.NoError(t, err)
		assert.Len(t, tickets, 2)

		req, ok := server.LastRequest(http.MethodPost, ticketsPath+"/search")
		require.True(t, ok)
		assert.ElementsMatch(t, []int{21, 22, 23, 24, 25, 26}, statusIDs(t, req))
		assert.InDelta(t, 10, req.JSON()["MaxResults"], 0)
	})

	t.Run("criteria override computed fields", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		tickets, err := client.Tickets().Search(context.Background(), tdx.TicketSearchOptions{
			SearchText: "vpn",
			Criteria:   map[string]interface{}{"StatusIDs": []int{24}, "AccountIDs": []int{103}},
		})
		require.NoError(t, err)
		require.Len(t, tickets, 1)
		assert.Equal(t, "VPN access request", tickets[0].StringField("Title"))

		req, ok := server.LastRequest(http.MethodPost, ticketsPath+"/search")
		require.True(t, ok)
		assert.Equal(t, []int{24}, statusIDs(t, req))
		assert.Equal(t, "vpn", req.JSON()["SearchText"])
		assert.Contains(t, req.JSON(), "AccountIDs")
	})

	t.Run("status lookups are cached across searches", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		for i := 0; i < 2; i++ {
			_, err := client.Tickets().Search(context.Background(), tdx.TicketSearchOptions{})
			require.NoError(t, err)
		}

		assert.Len(t, server.RequestsTo(http.MethodPost, ticketsPath+"/statuses/search"), 3)
	})

	t.Run("unknown status fails before searching", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		_, err := client.Tickets().Search(context.Background(), tdx.TicketSearchOptions{OtherStatuses: []string{"Escalated"}})
		require.ErrorIs(t, err, tdx.ErrNotFound)
		assert.Empty(t, server.RequestsTo(http.MethodPost, ticketsPath+"/search"))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTicketsEdit(t *testing.T) {
	t.Parallel()

	t.Run("posts the whole ticket with the notify flag", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		ctx := context.Background()

		ticket, err := client.Tickets().Get(ctx, 1001)
		require.NoError(t, err)

		edited, err := client.Tickets().Edit(ctx, ticket, map[string]interface{}{"Title": "Printer back online"}, true)
		require.NoError(t, err)
		assert.Equal(t, "Printer back online", edited.StringField("Title"))
		assert.Equal(t, "Printer offline", ticket.StringField("Title"))

		req, ok := server.LastRequest(http.MethodPost, ticketsPath+"/1001")
		require.True(t, ok)
		assert.Equal(t, "true", req.Query.Get("notifyNewResponsible"))
		assert.Equal(t, tdxtest.JaneUID, req.JSON()["RequestorUid"])
	})

	t.Run("falsy values clear fields", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		ctx := context.Background()

		ticket, err := client.Tickets().Get(ctx, 1001)
		require.NoError(t, err)

		_, err = client.Tickets().Edit(ctx, ticket, map[string]interface{}{"Description": ""}, false)
		require.NoError(t, err)

		req, ok := server.LastRequest(http.MethodPost, ticketsPath+"/1001")
		require.True(t, ok)
		assert.Equal(t, "false", req.Query.Get("notifyNewResponsible"))
		assert.NotContains(t, req.JSON(), "Description")
	})

	t.Run("rejects read-only fields", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		ctx := context.Background()

		ticket, err := client.Tickets().Get(ctx, 1001)
		require.NoError(t, err)

		_, err = client.Tickets().Edit(ctx, ticket, map[string]interface{}{"StatusName": "Closed"}, false)
		require.Error(t, err)
		assert.True(t, tdx.IsValidation(err))
		assert.Empty(t, server.RequestsTo(http.MethodPost, ticketsPath+"/1001"))
	})

	t.Run("EditMany checks every entity first", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		ctx := context.Background()

		ticket, err := client.Tickets().Get(ctx, 1001)
		require.NoError(t, err)

		asset, err := client.Assets().Get(ctx, 2001)
		require.NoError(t, err)

		_, err = client.Tickets().EditMany(ctx, []*tdx.Entity{ticket, asset}, map[string]interface{}{"Title": "x"}, false)
		require.ErrorIs(t, err, tdx.ErrObjectType)
		assert.Empty(t, server.RequestsTo(http.MethodPost, ticketsPath+"/1001"))
	})

	t.Run("SetStatus resolves the name", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		ctx := context.Background()

		ticket, err := client.Tickets().Get(ctx, 1001)
		require.NoError(t, err)

		saved, err := client.Tickets().SetStatus(ctx, []*tdx.Entity{ticket}, "on hold")
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, int64(23), saved[0].IntField("StatusID"))
	})

	t.Run("SetPriority and SetSource", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		ctx := context.Background()

		ticket, err := client.Tickets().Get(ctx, 1001)
		require.NoError(t, err)

		saved, err := client.Tickets().SetPriority(ctx, []*tdx.Entity{ticket}, "High")
		require.NoError(t, err)
		assert.Equal(t, int64(33), saved[0].IntField("PriorityID"))

		saved, err = client.Tickets().SetSource(ctx, saved, "phone")
		require.NoError(t, err)
		assert.Equal(t, int64(62), saved[0].IntField("SourceID"))
		assert.Equal(t, int64(33), saved[0].IntField("PriorityID"))
	})
}

func TestTicketsReferenceLookups(t *testing.T) {
	t.Parallel()

	server := tdxtest.NewServer(t)
	client := NewTestClient(t, server)
	tickets := client.Tickets()

	RunLookupTests(t, []TestLookupOperation{
		{Name: "type by partial name", Key: "hardware", WantID: 12},
		{Name: "type by ID", Key: "11", WantID: 11},
		{Name: "unknown type", Key: "Facilities", WantErr: true, ErrIs: tdx.ErrNotFound},
	}, tickets.Type, func(v *tdx.TicketType) int { return v.ID })

	idOf := func(v *tdx.ReferenceItem) int { return v.ID }

	RunLookupTests(t, []TestLookupOperation{
		{Name: "priority", Key: "medium", WantID: 32},
	}, tickets.Priority, idOf)
	RunLookupTests(t, []TestLookupOperation{
		{Name: "urgency", Key: "High", WantID: 42},
	}, tickets.Urgency, idOf)
	RunLookupTests(t, []TestLookupOperation{
		{Name: "impact", Key: "department", WantID: 52},
	}, tickets.Impact, idOf)
	RunLookupTests(t, []TestLookupOperation{
		{Name: "source", Key: "email", WantID: 61},
	}, tickets.Source, idOf)
	RunLookupTests(t, []TestLookupOperation{
		{Name: "form", Key: "IT Request", WantID: 71},
	}, tickets.Form, idOf)

	t.Run("StatusByID is memoized", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			status, err := tickets.StatusByID(context.Background(), 26)
			require.NoError(t, err)
			assert.Equal(t, "Resolved", status.Name)
		}

		assert.Len(t, server.RequestsTo(http.MethodGet, ticketsPath+"/statuses/26"), 1)
	})

	t.Run("reference lists are fetched once", func(t *testing.T) {
		assert.Len(t, server.RequestsTo(http.MethodGet, ticketsPath+"/types"), 1)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTicketsBuildAndCreate(t *testing.T) {
	t.Parallel()

	t.Run("Build resolves every reference", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

		ticket, err := client.Tickets().Build(context.Background(), &tdx.TicketTemplate{
			Title:          "Projector broken",
			Type:           "Hardware Repair",
			Classification: "ServiceRequest",
			Account:        "Facilities",
			Responsible:    "help desk",
			Location:       "Main Hall",
			Room:           "Lobby",
			FormID:         71,
			StartDate:      start,
			CustomAttributes: map[string]interface{}{
				"Building Floor": "second",
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "Projector broken", ticket.StringField("Title"))
		assert.Equal(t, "Auto-generated Ticket", ticket.StringField("Description"))
		assert.Equal(t, int64(12), ticket.IntField("TypeID"))
		assert.Equal(t, int64(46), ticket.IntField("Classification"))
		assert.Equal(t, int64(102), ticket.IntField("AccountID"))
		assert.Equal(t, int64(21), ticket.IntField("StatusID"))
		assert.Equal(t, int64(31), ticket.IntField("PriorityID"))
		assert.Equal(t, tdxtest.ServiceID, ticket.StringField("RequestorUid"))
		assert.Equal(t, int64(201), ticket.IntField("ResponsibleGroupID"))
		assert.Equal(t, int64(301), ticket.IntField("LocationID"))
		assert.Equal(t, int64(402), ticket.IntField("LocationRoomID"))
		assert.Equal(t, int64(71), ticket.IntField("FormID"))

		startValue, ok := ticket.Get("StartDate")
		require.True(t, ok)
		assert.True(t, start.Equal(startValue.Time()))

		attrs, ok := ticket.Get("Attributes")
		require.True(t, ok)

		values, err := tdx.CustomAttributeValues(attrs.List())
		require.NoError(t, err)
		assert.Equal(t, []tdx.CustomAttributeValue{{ID: 501, Value: "602"}}, values)

		assert.Empty(t, server.RequestsTo(http.MethodPost, ticketsPath))
	})

	t.Run("Build assigns a person for an email responsible", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		ticket, err := client.Tickets().Build(context.Background(), &tdx.TicketTemplate{
			Title:       "Password reset",
			Type:        "General Support",
			Account:     "Information Technology",
			Requestor:   "jdoe@example.edu",
			Responsible: "rsmith@example.edu",
			Priority:    "High",
		})
		require.NoError(t, err)
		assert.Equal(t, tdxtest.JaneUID, ticket.StringField("RequestorUid"))
		assert.Equal(t, tdxtest.RobertUID, ticket.StringField("ResponsibleUid"))
		assert.Equal(t, int64(33), ticket.IntField("PriorityID"))
		assert.Equal(t, int64(32), ticket.IntField("Classification"))
		assert.False(t, ticket.Has("ResponsibleGroupID"))
	})

	t.Run("Build reports unresolvable references", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		_, err := client.Tickets().Build(context.Background(), &tdx.TicketTemplate{
			Title:          "Bad classification",
			Type:           "General Support",
			Account:        "Information Technology",
			Classification: "Hotfix",
		})
		require.ErrorIs(t, err, tdx.ErrNotFound)

		_, err = client.Tickets().Build(context.Background(), &tdx.TicketTemplate{
			Title:   "Missing type",
			Account: "Information Technology",
		})
		require.Error(t, err)
		assert.True(t, tdx.IsValidation(err))
	})

	t.Run("Create posts with notification flags", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)
		ctx := context.Background()

		ticket, err := client.Tickets().Build(ctx, &tdx.TicketTemplate{
			Title:   "New laptop",
			Type:    "Hardware Repair",
			Account: "Information Technology",
		})
		require.NoError(t, err)

		created, err := client.Tickets().Create(ctx, ticket, true)
		require.NoError(t, err)

		id, ok := created.ID()
		require.True(t, ok)
		assert.Positive(t, id)

		req, ok := server.LastRequest(http.MethodPost, ticketsPath)
		require.True(t, ok)
		assert.Equal(t, "false", req.Query.Get("EnableNotifyReviewer"))
		assert.Equal(t, "false", req.Query.Get("NotifyRequestor"))
		assert.Equal(t, "false", req.Query.Get("NotifyResponsible"))
		assert.Equal(t, "false", req.Query.Get("AllowRequestorCreation"))
		assert.Equal(t, "New laptop", req.JSON()["Title"])
	})

	t.Run("Create rejects assets", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		client := NewTestClient(t, server)

		_, err := client.Tickets().Create(context.Background(), tdx.NewAsset(client.DateCodec()), false)
		require.ErrorIs(t, err, tdx.ErrObjectType)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTicketTasks(t *testing.T) {
	t.Parallel()

	server := tdxtest.NewServer(t)
	client := NewTestClient(t, server)
	ctx := context.Background()

	tasks, err := client.Tickets().ListTasks(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Check toner", tasks[0].Title)

	created, err := client.Tickets().CreateTask(ctx, 1001, &tdx.TicketTask{Title: "Replace fuser"})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, 1001, created.TicketID)

	created.PercentComplete = 100
	edited, err := client.Tickets().EditTask(ctx, 1001, created)
	require.NoError(t, err)
	assert.Equal(t, 100, edited.PercentComplete)

	fetched, err := client.Tickets().GetTask(ctx, 1001, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replace fuser", fetched.Title)

	_, err = client.Tickets().EditTask(ctx, 1001, &tdx.TicketTask{Title: "no id"})
	require.Error(t, err)

	require.NoError(t, client.Tickets().DeleteTask(ctx, 1001, created.ID))

	tasks, err = client.Tickets().ListTasks(ctx, 1001)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	_, err = client.Tickets().GetTask(ctx, 1001, created.ID)
	assert.True(t, tdx.IsNotFound(err))
}

func TestTicketAttachments(t *testing.T) {
	t.Parallel()

	server := tdxtest.NewServer(t)
	client := NewTestClient(t, server)

	attachment, err := client.Tickets().UploadAttachment(context.Background(), 1001, "screenshot.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "screenshot.png", attachment.Name)
	assert.Equal(t, int64(len("png-bytes")), attachment.Size)

	req, ok := server.LastRequest(http.MethodPost, ticketsPath+"/1001/attachments")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data"))
}
