package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
)

// NewAssetsCommand creates the assets command group.
func NewAssetsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assets",
		Aliases: []string{"asset"},
		Short:   "Manage assets",
		Long:    "Look up and search assets in the configured asset application",
	}

	cmd.AddCommand(newAssetsGetCommand(app))
	cmd.AddCommand(newAssetsFindCommand(app))
	cmd.AddCommand(newAssetsSearchCommand(app))

	return cmd
}

func newAssetsGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get ASSET_ID",
		Short: "Get asset details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "asset")
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			asset, err := client.Assets().Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get asset: %w", err)
			}

			return renderAsset(cmd, app, asset)
		},
	}
}

func newAssetsFindCommand(app *App) *cobra.Command {
	var (
		tag    string
		serial string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find assets by tag or serial number",
		Long:  "Find the asset with an exact tag, or every asset with a serial number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tag == "" && serial == "" {
				return fmt.Errorf("%w: --tag or --serial", constants.ErrNoSearchCriteria)
			}

			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			if tag != "" {
				asset, err := client.Assets().FindByTag(ctx, tag)
				if err != nil {
					return fmt.Errorf("failed to find asset: %w", err)
				}

				return renderAsset(cmd, app, asset)
			}

			assets, err := client.Assets().FindBySerial(ctx, serial)
			if err != nil {
				return fmt.Errorf("failed to find assets: %w", err)
			}

			return renderAssets(cmd, app, assets)
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "asset tag")
	cmd.Flags().StringVar(&serial, "serial", "", "serial number")
	cmd.MarkFlagsMutuallyExclusive("tag", "serial")

	return cmd
}

func newAssetsSearchCommand(app *App) *cobra.Command {
	var (
		retired     bool
		disposed    bool
		allStatuses bool
		full        bool
		statuses    []string
		maxResults  int
	)

	cmd := &cobra.Command{
		Use:   "search TEXT",
		Short: "Search assets",
		Long: `Search assets by text. Assets that are Inventory, In Use or Broken are
included unless --all-statuses is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			assets, err := client.Assets().Search(ctx, tdx.AssetSearchOptions{
				SearchText:    args[0],
				MaxResults:    maxResults,
				Retired:       retired,
				Disposed:      disposed,
				AllStatuses:   allStatuses,
				OtherStatuses: statuses,
				FullRecord:    full,
			})
			if err != nil {
				return fmt.Errorf("failed to search assets: %w", err)
			}

			return renderAssets(cmd, app, assets)
		},
	}

	cmd.Flags().BoolVar(&retired, "retired", false, "include retired assets")
	cmd.Flags().BoolVar(&disposed, "disposed", false, "include disposed assets")
	cmd.Flags().BoolVar(&allStatuses, "all-statuses", false, "search every status")
	cmd.Flags().BoolVar(&full, "full", false, "fetch full records including custom attributes")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "include assets in this status (repeatable)")
	cmd.Flags().IntVar(&maxResults, "max", constants.DefaultSearchResults, "maximum number of results")

	return cmd
}

func renderAsset(cmd *cobra.Command, app *App, asset *tdx.Entity) error {
	return app.Render(cmd, asset, func(table *tablewriter.Table) {
		table.Header("Property", "Value")

		_ = table.Append("ID", formatInt(asset.IntField("ID")))
		_ = table.Append("Name", formatValue(asset.StringField("Name")))
		_ = table.Append("Tag", formatValue(asset.StringField("Tag")))
		_ = table.Append("Serial Number", formatValue(asset.StringField("SerialNumber")))
		_ = table.Append("Status", formatValue(asset.StringField("StatusName")))
		_ = table.Append("Model", formatValue(asset.StringField("ProductModelName")))
		_ = table.Append("Owner", formatValue(asset.StringField("OwningCustomerName")))
		_ = table.Append("Department", formatValue(asset.StringField("RequestingDepartmentName")))
		_ = table.Append("Location", formatValue(asset.StringField("LocationName")))
		_ = table.Append("Room", formatValue(asset.StringField("LocationRoomName")))
	})
}

func renderAssets(cmd *cobra.Command, app *App, assets []*tdx.Entity) error {
	if len(assets) == 0 && app.isTable() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No assets found")

		return nil
	}

	return app.Render(cmd, assets, func(table *tablewriter.Table) {
		table.Header("ID", "Tag", "Name", "Serial Number", "Status", "Location")

		for _, asset := range assets {
			_ = table.Append(
				formatInt(asset.IntField("ID")),
				formatValue(asset.StringField("Tag")),
				formatValue(asset.StringField("Name")),
				formatValue(asset.StringField("SerialNumber")),
				formatValue(asset.StringField("StatusName")),
				formatValue(asset.StringField("LocationName")),
			)
		}
	})
}
