package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/logging"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/fivetwenty-io/tdx-client/pkg/tdxclient"
)

// App holds the state shared by every command.
type App struct {
	v *viper.Viper

	// ReadPassword prompts on the terminal without echo.
	ReadPassword func(prompt string) (string, error)
	// SearchPaths overrides where settings files are looked for.
	SearchPaths []string
}

// NewApp creates the shared command state. Global flags are bound into its
// own viper instance; TDX_OUTPUT, TDX_CONFIG and TDX_DEBUG set their defaults.
func NewApp() *App {
	v := viper.New()
	v.SetEnvPrefix("TDX")
	v.AutomaticEnv()

	return &App{
		v:            v,
		ReadPassword: readPassword,
	}
}

func readPassword(prompt string) (string, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)

	pw, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // file descriptors fit in int
	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrPasswordPromptFail, err)
	}

	return string(pw), nil
}

// LoadSettings resolves the client settings for a command. The --sandbox
// flag forces the sandbox environment.
func (a *App) LoadSettings(values map[string]interface{}) (*tdxclient.Settings, error) {
	settings, err := tdxclient.LoadSettings(tdxclient.LoadOptions{
		File:        a.v.GetString("config"),
		SearchPaths: a.SearchPaths,
		Values:      values,
	})
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	if a.v.GetBool("sandbox") {
		settings.Sandbox = true
	}

	return settings, nil
}

// NewClient builds a client from settings. Issued tokens are written back to
// the settings file, and a missing password is asked for on the terminal.
func (a *App) NewClient(ctx context.Context, settings *tdxclient.Settings) (tdx.Client, error) {
	config, err := settings.ToConfig()
	if err != nil {
		return nil, err
	}

	if a.v.GetBool("debug") {
		config.Debug = true
		config.Logger = logging.New(logging.Options{Level: "DEBUG"})
	}

	if settings.PromptsForPassword() {
		username := settings.Username
		config.PasswordPrompt = func() (string, error) {
			return a.ReadPassword(fmt.Sprintf("Enter the TDX password for %s (it will not be written to disk): ", username))
		}
	}

	if settings.AuthType != tdx.AuthTypeToken {
		config.TokenPersister = NewConfigPersister(a.SettingsPath(settings))
	}

	client, err := tdxclient.New(ctx, config)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// CreateClient loads settings and builds a client in one step.
func (a *App) CreateClient(ctx context.Context) (tdx.Client, error) {
	settings, err := a.LoadSettings(nil)
	if err != nil {
		return nil, err
	}

	return a.NewClient(ctx, settings)
}

// SettingsPath returns the file settings are written to: the file that was
// read, the --config file, an existing tdxlib file in the search paths, or
// ~/.tdx/tdxlib.yaml.
func (a *App) SettingsPath(settings *tdxclient.Settings) string {
	if settings != nil && settings.File != "" {
		return settings.File
	}

	if path := a.v.GetString("config"); path != "" {
		return path
	}

	dirs := a.SearchPaths
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	home, err := os.UserHomeDir()
	if err == nil && len(a.SearchPaths) == 0 {
		dirs = append(dirs, filepath.Join(home, constants.SettingsDir))
	}

	for _, dir := range dirs {
		for _, ext := range []string{".ini", ".yaml", ".yml", ".json", ".toml"} {
			path := filepath.Join(dir, tdxclient.DefaultSettingsName+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}

	if len(a.SearchPaths) > 0 {
		return filepath.Join(a.SearchPaths[0], constants.SettingsFileName)
	}

	return filepath.Join(home, constants.SettingsDir, constants.SettingsFileName)
}

// Render writes data as json or yaml, or as the table built by fill.
func (a *App) Render(cmd *cobra.Command, data interface{}, fill func(table *tablewriter.Table)) error {
	out := cmd.OutOrStdout()

	switch output := a.v.GetString("output"); output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	case constants.FormatYAML:
		return writeYAML(out, data)
	case constants.FormatTable, "":
		table := tablewriter.NewWriter(out)
		fill(table)

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, output)
	}
}

func writeYAML(out io.Writer, data interface{}) error {
	// Entities only know how to encode themselves as JSON.
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	encoded, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	_, err = out.Write(encoded)

	return err
}

// parseID parses a numeric identifier argument.
func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q", constants.ErrInvalidID, what, arg)
	}

	return id, nil
}

func formatValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

func formatInt(value int64) string {
	if value == 0 {
		return "-"
	}

	return strconv.FormatInt(value, 10)
}

func (a *App) isTable() bool {
	output := a.v.GetString("output")

	return output == "" || output == constants.FormatTable
}
