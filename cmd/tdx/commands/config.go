package commands

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdxclient"
)

const maskedValue = "********"

// NewConfigCommand creates the config command group.
func NewConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and edit the settings file used to reach TeamDynamix",
	}

	cmd.AddCommand(newConfigShowCommand(app))
	cmd.AddCommand(newConfigSetCommand(app))
	cmd.AddCommand(newConfigUnsetCommand(app))
	cmd.AddCommand(newConfigPathCommand(app))

	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the resolved settings after the file, environment and flags are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.LoadSettings(nil)
			if err != nil {
				return err
			}

			values := settingsValues(settings, showSecrets)

			apiURL, err := settings.APIURL()
			if err != nil {
				return err
			}

			data := map[string]interface{}{
				"file":     formatValue(settings.File),
				"api_url":  apiURL,
				"settings": values,
			}

			return app.Render(cmd, data, func(table *tablewriter.Table) {
				table.Header("Setting", "Value")
				_ = table.Append("settings file", formatValue(settings.File))
				_ = table.Append("api url", apiURL)

				for _, key := range tdxclient.Keys {
					_ = table.Append(key, formatValue(values[key]))
				}
			})
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the password and token unmasked")

	return cmd
}

func newConfigSetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Write a setting to the settings file. Keys: " + strings.Join(tdxclient.Keys, ", "),
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])
			value := args[1]

			if !slices.Contains(tdxclient.Keys, key) {
				return fmt.Errorf("%w: %s", constants.ErrConfigKeyUnknown, key)
			}

			path := app.SettingsPath(nil)
			if err := (SettingsFile{Path: path}).Set(map[string]string{key: value}); err != nil {
				return err
			}

			shown := value
			if isSecret(key) {
				shown = maskedValue
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, shown, path)

			return nil
		},
	}
}

func newConfigUnsetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a setting from the settings file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.ToLower(args[0])

			if !slices.Contains(tdxclient.Keys, key) {
				return fmt.Errorf("%w: %s", constants.ErrConfigKeyUnknown, key)
			}

			path := app.SettingsPath(nil)
			if err := (SettingsFile{Path: path}).Unset(key); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s in %s\n", key, path)

			return nil
		},
	}
}

func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), app.SettingsPath(nil))

			return err
		},
	}
}

func isSecret(key string) bool {
	return key == tdxclient.KeyPassword || key == tdxclient.KeyToken
}

func settingsValues(s *tdxclient.Settings, showSecrets bool) map[string]string {
	values := map[string]string{
		tdxclient.KeyOrgName:      s.OrgName,
		tdxclient.KeyFullHost:     s.FullHost,
		tdxclient.KeySandbox:      strconv.FormatBool(s.Sandbox),
		tdxclient.KeyAuthType:     s.AuthType,
		tdxclient.KeyUsername:     s.Username,
		tdxclient.KeyPassword:     s.Password,
		tdxclient.KeyToken:        s.Token,
		tdxclient.KeyTicketAppID:  strconv.Itoa(s.TicketAppID),
		tdxclient.KeyAssetAppID:   strconv.Itoa(s.AssetAppID),
		tdxclient.KeyCaching:      strconv.FormatBool(s.Caching),
		tdxclient.KeyTimezone:     s.Timezone,
		tdxclient.KeyLogLevel:     s.LogLevel,
		tdxclient.KeyBaseURL:      s.BaseURL,
		tdxclient.KeyRetries:      strconv.Itoa(s.Retries),
		tdxclient.KeyTimeout:      s.Timeout.String(),
		tdxclient.KeyHTTP2:        strconv.FormatBool(s.HTTP2),
		tdxclient.KeyCacheBackend: s.CacheBackend,
		tdxclient.KeyNATSURL:      s.NATSURL,
		tdxclient.KeyRedisAddr:    s.RedisAddr,
	}

	if !showSecrets {
		for key, value := range values {
			// "Prompt" is an instruction, not a secret.
			if isSecret(key) && value != "" && value != tdxclient.PasswordPromptValue {
				values[key] = maskedValue
			}
		}
	}

	return values
}
