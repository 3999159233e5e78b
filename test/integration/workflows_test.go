//go:build integration

package integration

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkflow_ConfigAndLogin checks that the settings file resolves and a
// token can be issued.
func TestWorkflow_ConfigAndLogin(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("config", "show", "--output", "json")
	require.NoError(t, err, "Failed to show config: %s", stderr)
	AssertJSONOutput(t, stdout)
	assert.Contains(t, stdout, "SBTDWebApi")

	stdout, stderr, err = runner.Run("login")
	require.NoError(t, err, "Failed to login: %s", stderr)
	assert.Contains(t, stdout, "Successfully logged in")
}

// TestWorkflow_Tickets looks a ticket up and searches around it.
func TestWorkflow_Tickets(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	if config.TicketID == "" {
		t.Skip("TDX_TEST_TICKET_ID not set")
	}

	runner := NewCommandRunner(config, t)

	// 1. Get the ticket
	stdout, stderr, err := runner.Run("tickets", "get", config.TicketID, "--output", "json")
	require.NoError(t, err, "Failed to get ticket: %s", stderr)

	var ticket map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &ticket))
	require.NotEmpty(t, ticket["Title"])

	// 2. Search by its title, including closed tickets
	title, _ := ticket["Title"].(string)
	stdout, stderr, err = runner.Run("tickets", "search", title, "--closed", "--cancelled", "--max", "50", "--output", "json")
	require.NoError(t, err, "Failed to search tickets: %s", stderr)
	assert.Contains(t, stdout, config.TicketID)

	// 3. The table view shows the same ticket
	stdout, stderr, err = runner.Run("tickets", "get", config.TicketID)
	require.NoError(t, err, "Failed to get ticket: %s", stderr)
	assert.Contains(t, stdout, title)
}

// TestWorkflow_Assets finds an asset by tag and reads it back by ID.
func TestWorkflow_Assets(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	if config.AssetTag == "" {
		t.Skip("TDX_TEST_ASSET_TAG not set")
	}

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("assets", "find", "--tag", config.AssetTag, "--output", "json")
	require.NoError(t, err, "Failed to find asset: %s", stderr)

	var asset map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &asset))

	id, ok := asset["ID"].(float64)
	require.True(t, ok, "asset should have an ID")

	stdout, stderr, err = runner.Run("assets", "get", strconv.FormatInt(int64(id), 10), "--output", "yaml")
	require.NoError(t, err, "Failed to get asset: %s", stderr)
	assert.Contains(t, stdout, "Tag:")
}

// TestWorkflow_Directory exercises the reference-data lookups.
func TestWorkflow_Directory(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	if config.PersonSearch != "" {
		stdout, stderr, err := runner.Run("people", "search", config.PersonSearch, "--max", "5", "--output", "json")
		require.NoError(t, err, "Failed to search people: %s", stderr)
		AssertJSONOutput(t, stdout)
	}

	for _, component := range []string{"ticket", "asset"} {
		stdout, stderr, err := runner.Run("attributes", "list", "--component", component, "--output", "json")
		require.NoError(t, err, "Failed to list %s attributes: %s", component, stderr)
		AssertJSONOutput(t, stdout)
	}

	_, stderr, err := runner.Run("cache", "clear")
	require.NoError(t, err, "Failed to clear cache: %s", stderr)
}
