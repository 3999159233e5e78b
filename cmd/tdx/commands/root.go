package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the tdx command tree around a fresh App.
func NewRootCommand(version, commit, date string) *cobra.Command {
	return NewRootCommandWithApp(NewApp(), version, commit, date)
}

// NewRootCommandWithApp builds the command tree around app.
func NewRootCommandWithApp(app *App, version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tdx",
		Short: "TeamDynamix API CLI",
		Long: `A command-line interface for the TeamDynamix web API.

Settings are read from tdxlib.ini or tdxlib.yaml in the current directory or
~/.tdx, from TDXLIB_* environment variables, and from --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "settings file (default is ./tdxlib.ini or $HOME/.tdx/tdxlib.yaml)")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.Bool("sandbox", false, "use the sandbox environment")
	flags.Bool("debug", false, "log HTTP requests and responses")

	// Bind flags to viper
	for _, name := range []string{"config", "output", "sandbox", "debug"} {
		_ = app.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(NewVersionCommand(app, version, commit, date))
	rootCmd.AddCommand(NewLoginCommand(app))
	rootCmd.AddCommand(NewLogoutCommand(app))
	rootCmd.AddCommand(NewConfigCommand(app))
	rootCmd.AddCommand(NewTicketsCommand(app))
	rootCmd.AddCommand(NewAssetsCommand(app))
	rootCmd.AddCommand(NewAccountsCommand(app))
	rootCmd.AddCommand(NewPeopleCommand(app))
	rootCmd.AddCommand(NewGroupsCommand(app))
	rootCmd.AddCommand(NewLocationsCommand(app))
	rootCmd.AddCommand(NewAttributesCommand(app))
	rootCmd.AddCommand(NewCacheCommand(app))

	return rootCmd
}
