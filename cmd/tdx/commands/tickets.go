package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// NewTicketsCommand creates the tickets command group.
func NewTicketsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"ticket"},
		Short:   "Manage tickets",
		Long:    "Look up and search tickets in the configured ticketing application",
	}

	cmd.AddCommand(newTicketsGetCommand(app))
	cmd.AddCommand(newTicketsSearchCommand(app))

	return cmd
}

func newTicketsGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get TICKET_ID",
		Short: "Get ticket details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "ticket")
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			ticket, err := client.Tickets().Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get ticket: %w", err)
			}

			return app.Render(cmd, ticket, func(table *tablewriter.Table) {
				table.Header("Property", "Value")

				_ = table.Append("ID", formatInt(ticket.IntField("ID")))
				_ = table.Append("Title", formatValue(ticket.StringField("Title")))
				_ = table.Append("Type", formatValue(ticket.StringField("TypeName")))
				_ = table.Append("Status", formatValue(ticket.StringField("StatusName")))
				_ = table.Append("Priority", formatValue(ticket.StringField("PriorityName")))
				_ = table.Append("Account", formatValue(ticket.StringField("AccountName")))
				_ = table.Append("Requestor", formatValue(ticket.StringField("RequestorName")))
				_ = table.Append("Responsible", formatValue(ticket.StringField("ResponsibleFullName")))
				_ = table.Append("Responsible Group", formatValue(ticket.StringField("ResponsibleGroupName")))
				_ = table.Append("Location", formatValue(ticket.StringField("LocationName")))
			})
		},
	}
}

func newTicketsSearchCommand(app *App) *cobra.Command {
	var (
		closed     bool
		cancelled  bool
		statuses   []string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "search [TEXT]",
		Short: "Search tickets",
		Long: `Search tickets by text. Tickets that are New, Open or On Hold are always
included; --closed, --cancelled and --status widen the search.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tdx.TicketSearchOptions{
				MaxResults:    maxResults,
				Closed:        closed,
				Cancelled:     cancelled,
				OtherStatuses: statuses,
			}
			if len(args) > 0 {
				opts.SearchText = args[0]
			}

			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			tickets, err := client.Tickets().Search(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to search tickets: %w", err)
			}

			if len(tickets) == 0 && app.isTable() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tickets found")

				return nil
			}

			return app.Render(cmd, tickets, func(table *tablewriter.Table) {
				table.Header("ID", "Title", "Type", "Status", "Priority")

				for _, ticket := range tickets {
					_ = table.Append(
						formatInt(ticket.IntField("ID")),
						ticket.StringField("Title"),
						formatValue(ticket.StringField("TypeName")),
						formatValue(ticket.StringField("StatusName")),
						formatValue(ticket.StringField("PriorityName")),
					)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&closed, "closed", false, "include closed tickets")
	cmd.Flags().BoolVar(&cancelled, "cancelled", false, "include cancelled tickets")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "include tickets in this status (repeatable)")
	cmd.Flags().IntVar(&maxResults, "max", constants.DefaultSearchResults, "maximum number of results")

	return cmd
}
