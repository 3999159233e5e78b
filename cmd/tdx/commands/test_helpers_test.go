package commands_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/tdx-client/cmd/tdx/commands"
	"github.com/fivetwenty-io/tdx-client/internal/tdxtest"
)

var errUnexpectedPrompt = errors.New("unexpected password prompt")

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// writeSettings writes a yaml settings file pointing at server and returns
// its path. extra entries replace the defaults; a nil value removes one.
func writeSettings(t *testing.T, server *tdxtest.Server, extra map[string]interface{}) string {
	t.Helper()

	values := map[string]interface{}{
		"base_url":      server.BaseURL(),
		"username":      server.Username,
		"password":      server.Password,
		"ticket_app_id": server.TicketAppID,
		"asset_app_id":  server.AssetAppID,
		"timezone":      "Z",
	}

	for key, value := range extra {
		if value == nil {
			delete(values, key)

			continue
		}

		values[key] = value
	}

	data, err := yaml.Marshal(values)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tdxlib.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

// readSettings decodes the yaml settings file at path.
func readSettings(t *testing.T, path string) map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)

	out := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal(data, &out))

	return out
}

// runCLI executes the command tree against the settings file at path.
func runCLI(t *testing.T, app *commands.App, path string, args ...string) (string, error) {
	t.Helper()

	if app == nil {
		app = commands.NewApp()
		app.ReadPassword = func(string) (string, error) { return "", errUnexpectedPrompt }
	}

	app.SearchPaths = []string{filepath.Dir(path)}

	root := commands.NewRootCommandWithApp(app, "1.2.3", "abc123", "2026-01-02")

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", path}, args...))

	err := root.Execute()

	return out.String(), err
}
