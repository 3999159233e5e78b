package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the lookup cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear cached lookups",
		Long:  "Empty the in-process lookup tables and the shared cache backend, if one is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := app.CreateClient(ctx)
			if err != nil {
				return err
			}

			defer func() { _ = client.Close() }()

			if err := client.InvalidateAll(ctx); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")

			return nil
		},
	})

	return cmd
}
