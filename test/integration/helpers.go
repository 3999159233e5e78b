//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	SettingsFile string
	TdxPath      string
	TicketID     string
	AssetTag     string
	PersonSearch string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		SettingsFile: os.Getenv("TDX_INTEGRATION_SETTINGS"),
		TdxPath:      getTdxPath(),
		TicketID:     os.Getenv("TDX_TEST_TICKET_ID"),
		AssetTag:     os.Getenv("TDX_TEST_ASSET_TAG"),
		PersonSearch: os.Getenv("TDX_TEST_PERSON"),
		Verbose:      os.Getenv("TDX_VERBOSE") == "true",
	}
}

// getTdxPath determines the path to the tdx binary
func getTdxPath() string {
	if path := os.Getenv("TDX_BINARY_PATH"); path != "" {
		return path
	}

	// Try common locations
	candidates := []string{
		"../../tdx",
		"./tdx",
		"../tdx",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "tdx" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.SettingsFile == "" {
		t.Skip("TDX_INTEGRATION_SETTINGS not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.TdxPath); err != nil {
		t.Skipf("tdx binary not found at %s, skipping integration test", config.TdxPath)
	}
}

// CommandRunner provides utilities for running tdx commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a tdx command against the sandbox and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.config.SettingsFile, "--sandbox"}, args...)

	// #nosec G204 -- the binary path comes from the test environment
	cmd := exec.Command(runner.config.TdxPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.TdxPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput checks that output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	var js interface{}
	assert.NoError(t, json.Unmarshal([]byte(output), &js), "Output should be valid JSON: %s", output)
}
