package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/fivetwenty-io/tdx-client/pkg/tdxclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(app *App) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to TeamDynamix",
		Long: `Exchange the configured username and password for an API token.

The password is read from the terminal unless --password is given, and is
never written to disk. The issued token is saved to the settings file and
reused by later commands until it expires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides map[string]interface{}
			if username != "" {
				overrides = map[string]interface{}{tdxclient.KeyUsername: username}
			}

			settings, err := app.LoadSettings(overrides)
			if err != nil {
				return err
			}

			if settings.AuthType != tdx.AuthTypeToken {
				// Force a fresh exchange.
				settings.Token = ""

				if password != "" {
					settings.Password = password
				} else if settings.PromptsForPassword() {
					prompt := fmt.Sprintf("Password for %s: ", settings.Username)

					settings.Password, err = app.ReadPassword(prompt)
					if err != nil {
						return err
					}
				}
			}

			ctx := context.Background()

			client, err := app.NewClient(ctx, settings)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			defer func() { _ = client.Close() }()

			authenticator, ok := client.(interface {
				Authenticate(ctx context.Context) error
			})
			if ok {
				if err := authenticator.Authenticate(ctx); err != nil {
					return err
				}
			}

			path := app.SettingsPath(settings)

			if username != "" {
				if err := (SettingsFile{Path: path}).Set(map[string]string{tdxclient.KeyUsername: username}); err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}
			}

			apiURL, _ := settings.APIURL()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Successfully logged in to %s\n", apiURL)

			if settings.AuthType != tdx.AuthTypeToken {
				_, _ = fmt.Fprintf(out, "Token saved to %s\n", path)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username for authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for authentication")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from TeamDynamix",
		Long:  "Remove the saved API token from the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.SettingsPath(nil)
			if err := (SettingsFile{Path: path}).Unset(tdxclient.KeyToken); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}
