package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// NewAccountsCommand creates the accounts command group.
func NewAccountsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account", "departments"},
		Short:   "Look up accounts and departments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get NAME_OR_ID",
		Short: "Get an account by name or ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			if id, err := strconv.Atoi(args[0]); err == nil {
				account, err := client.Accounts().Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get account: %w", err)
				}

				return app.Render(cmd, account, func(table *tablewriter.Table) {
					table.Header("Property", "Value")
					_ = table.Append("ID", formatInt(account.IntField("ID")))
					_ = table.Append("Name", formatValue(account.StringField("Name")))
					_ = table.Append("Parent", formatValue(account.StringField("ParentName")))
					_ = table.Append("Code", formatValue(account.StringField("Code")))
					_ = table.Append("Manager", formatValue(account.StringField("ManagerFullName")))
				})
			}

			account, err := client.Accounts().GetByName(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}

			return app.Render(cmd, account, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", strconv.Itoa(account.ID))
				_ = table.Append("Name", account.Name)
				_ = table.Append("Parent", formatValue(account.ParentName))
				_ = table.Append("Code", formatValue(account.Code))
				_ = table.Append("Active", strconv.FormatBool(account.IsActive))
			})
		},
	})

	return cmd
}

// NewPeopleCommand creates the people command group.
func NewPeopleCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "people",
		Aliases: []string{"person", "users"},
		Short:   "Look up people",
	}

	var maxResults int

	search := &cobra.Command{
		Use:   "search TEXT",
		Short: "Search people by name, email or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			people, err := client.People().Search(ctx, args[0], maxResults)
			if err != nil {
				return fmt.Errorf("failed to search people: %w", err)
			}

			if len(people) == 0 && app.isTable() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No people found")

				return nil
			}

			return app.Render(cmd, people, func(table *tablewriter.Table) {
				table.Header("UID", "Name", "Username", "Email")

				for _, person := range people {
					_ = table.Append(person.UID, person.FullName, formatValue(person.UserName), formatValue(person.PrimaryEmail))
				}
			})
		},
	}

	search.Flags().IntVar(&maxResults, "max", constants.DefaultSearchResults, "maximum number of results")
	cmd.AddCommand(search)

	return cmd
}

// NewGroupsCommand creates the groups command group.
func NewGroupsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Look up groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "members NAME_OR_ID",
		Short: "List the members of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				group, err := client.Groups().GetByName(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get group: %w", err)
				}

				id = group.ID
			}

			members, err := client.Groups().Members(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to list group members: %w", err)
			}

			return app.Render(cmd, members, func(table *tablewriter.Table) {
				table.Header("UID", "Name", "Email")

				for _, person := range members {
					_ = table.Append(person.UID, person.FullName, formatValue(person.PrimaryEmail))
				}
			})
		},
	})

	return cmd
}

// NewLocationsCommand creates the locations command group.
func NewLocationsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"location", "buildings"},
		Short:   "Look up locations and rooms",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get NAME_OR_ID",
		Short: "Get a location and its rooms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			var location *tdx.Location

			// Name lookups already return the full record with rooms.
			if id, convErr := strconv.Atoi(args[0]); convErr == nil {
				location, err = client.Locations().Get(ctx, id)
			} else {
				location, err = client.Locations().GetByName(ctx, args[0])
			}

			if err != nil {
				return fmt.Errorf("failed to get location: %w", err)
			}

			return app.Render(cmd, location, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", strconv.Itoa(location.ID))
				_ = table.Append("Name", location.Name)
				_ = table.Append("Address", formatValue(location.Address))
				_ = table.Append("City", formatValue(location.City))

				rooms := make([]string, 0, len(location.Rooms))
				for _, room := range location.Rooms {
					rooms = append(rooms, room.Name)
				}

				_ = table.Append("Rooms", formatValue(strings.Join(rooms, ", ")))
			})
		},
	})

	return cmd
}

// NewAttributesCommand creates the attributes command group.
func NewAttributesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attributes",
		Aliases: []string{"attrs"},
		Short:   "Look up custom attributes",
	}

	var (
		component string
		appID     int
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List custom attributes of a component",
		Long:  "List custom attributes. --component takes ticket, asset, ci or a numeric component ID.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			componentID, err := parseComponent(component)
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			attributes, err := client.Attributes().List(ctx, componentID, 0, appID)
			if err != nil {
				return fmt.Errorf("failed to list attributes: %w", err)
			}

			return app.Render(cmd, attributes, func(table *tablewriter.Table) {
				table.Header("ID", "Name", "Field Type", "Choices")

				for _, attr := range attributes {
					choices := make([]string, 0, len(attr.Choices))
					for _, choice := range attr.Choices {
						choices = append(choices, choice.Name)
					}

					_ = table.Append(strconv.Itoa(attr.ID), attr.Name, formatValue(attr.FieldType), formatValue(strings.Join(choices, ", ")))
				}
			})
		},
	}

	list.Flags().StringVar(&component, "component", "ticket", "component: ticket, asset, ci or an ID")
	list.Flags().IntVar(&appID, "app", 0, "application ID")
	cmd.AddCommand(list)

	return cmd
}

func parseComponent(value string) (int, error) {
	switch strings.ToLower(value) {
	case "ticket", "tickets":
		return constants.ComponentTicket, nil
	case "asset", "assets":
		return constants.ComponentAsset, nil
	case "ci", "configuration-item":
		return constants.ComponentConfigurationItem, nil
	}

	return parseID(value, "component")
}
