package commands_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/internal/tdxtest"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTicketsCommands(t *testing.T) {
	t.Parallel()

	t.Run("get renders a table", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "tickets", "get", "1001")
		require.NoError(t, err)
		assert.Contains(t, out, "Printer offline")
		assert.Contains(t, out, "General Support")
		assert.Contains(t, out, "New")
	})

	t.Run("get as json", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "tickets", "get", "1001", "-o", "json")
		require.NoError(t, err)

		var ticket map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &ticket))
		assert.Equal(t, "Printer offline", ticket["Title"])
		assert.InDelta(t, 1001, ticket["ID"], 0)
	})

	t.Run("get rejects a non-numeric ID", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		_, err := runCLI(t, nil, path, "tickets", "get", "abc")
		require.ErrorIs(t, err, constants.ErrInvalidID)
		assert.Empty(t, server.Requests())
	})

	t.Run("get unknown ticket", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		_, err := runCLI(t, nil, path, "tickets", "get", "9999")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get ticket")
	})

	t.Run("search uses the default statuses", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "tickets", "search")
		require.NoError(t, err)
		assert.Contains(t, out, "Printer offline")
		assert.NotContains(t, out, "VPN access request")
	})

	t.Run("search includes closed tickets", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "tickets", "search", "VPN", "--closed")
		require.NoError(t, err)
		assert.Contains(t, out, "VPN access request")
	})

	t.Run("search without results", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "tickets", "search", "nothing like this")
		require.NoError(t, err)
		assert.Contains(t, out, "No tickets found")
	})

	t.Run("search sends max results", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		_, err := runCLI(t, nil, path, "tickets", "search", "--max", "5")
		require.NoError(t, err)

		req, ok := server.LastRequest("POST", "/40/tickets/search")
		require.True(t, ok)
		assert.InDelta(t, 5, req.JSON()["MaxResults"], 0)
	})
}

func TestCommandsReuseThePersistedToken(t *testing.T) {
	t.Parallel()

	server := tdxtest.NewServer(t)
	path := writeSettings(t, server, nil)

	_, err := runCLI(t, nil, path, "tickets", "get", "1001")
	require.NoError(t, err)
	assert.Equal(t, 1, server.TokensIssued())

	settings := readSettings(t, path)
	assert.NotEmpty(t, settings["token"])
	assert.Equal(t, server.Password, settings["password"])

	_, err = runCLI(t, nil, path, "assets", "get", "2001")
	require.NoError(t, err)
	assert.Equal(t, 1, server.TokensIssued())
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestAssetsCommands(t *testing.T) {
	t.Parallel()

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "assets", "get", "2001")
		require.NoError(t, err)
		assert.Contains(t, out, "LT-0042")
		assert.Contains(t, out, "SN-ABC-42")
		assert.Contains(t, out, "In Use")
	})

	t.Run("find by tag", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "assets", "find", "--tag", "00042")
		require.NoError(t, err)
		assert.Contains(t, out, "LT-0042")
		assert.NotContains(t, out, "LT-0420")
	})

	t.Run("find by serial", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "assets", "find", "--serial", "SN-OLD", "-o", "json")
		require.NoError(t, err)

		var assets []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &assets))
		require.Len(t, assets, 1)
		assert.Equal(t, "Old desktop", assets[0]["Name"])
	})

	t.Run("find requires a tag or serial", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		_, err := runCLI(t, nil, path, "assets", "find")
		require.ErrorIs(t, err, constants.ErrNoSearchCriteria)
	})

	t.Run("search skips retired assets", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "assets", "search", "Old")
		require.NoError(t, err)
		assert.Contains(t, out, "No assets found")
	})

	t.Run("search with retired", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "assets", "search", "Old", "--retired", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "Name: Old desktop")
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestDirectoryCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{"account by name", []string{"accounts", "get", "Information Technology"}, []string{"101"}},
		{"account by ID", []string{"accounts", "get", "102"}, []string{"Facilities Management"}},
		{"people search", []string{"people", "search", "jane"}, []string{"Jane Doe", tdxtest.JaneUID}},
		{"group members", []string{"groups", "members", "Help Desk"}, []string{"Jane Doe", "Robert Smith"}},
		{"group members by ID", []string{"groups", "members", "201"}, []string{"Jane Doe"}},
		{"location by name", []string{"locations", "get", "Main Hall"}, []string{"301", "101, Lobby"}},
		{"location by ID", []string{"locations", "get", "303"}, []string{"Annex", "Storage B"}},
		{"ticket attributes", []string{"attributes", "list"}, []string{"Building Floor", "First, Second"}},
		{"asset attributes", []string{"attributes", "list", "--component", "asset"}, []string{"Funding Source", "Grant"}},
		{"ci attributes by ID", []string{"attributes", "list", "--component", "63"}, []string{"Support Tier"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := tdxtest.NewServer(t)
			path := writeSettings(t, server, nil)

			out, err := runCLI(t, nil, path, tt.args...)
			require.NoError(t, err)

			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}

	t.Run("people search without results", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		out, err := runCLI(t, nil, path, "people", "search", "nobody-here")
		require.NoError(t, err)
		assert.Contains(t, out, "No people found")
	})

	t.Run("unknown component", func(t *testing.T) {
		t.Parallel()

		server := tdxtest.NewServer(t)
		path := writeSettings(t, server, nil)

		_, err := runCLI(t, nil, path, "attributes", "list", "--component", "widgets")
		require.ErrorIs(t, err, constants.ErrInvalidID)
	})
}

func TestCacheClearCommand(t *testing.T) {
	t.Parallel()

	server := tdxtest.NewServer(t)
	path := writeSettings(t, server, map[string]interface{}{"caching": true})

	out, err := runCLI(t, nil, path, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared")
}
