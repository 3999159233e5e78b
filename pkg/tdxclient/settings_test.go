package tdxclient_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fivetwenty-io/tdx-client/internal/constants"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/fivetwenty-io/tdx-client/pkg/tdxclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// load resolves settings from values only, isolated from the environment and
// from any settings file in the working directory.
func load(t *testing.T, values map[string]interface{}) (*tdxclient.Settings, error) {
	t.Helper()

	return tdxclient.LoadSettings(tdxclient.LoadOptions{
		SearchPaths: []string{t.TempDir()},
		Values:      values,
		IgnoreEnv:   true,
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestLoadSettings(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{"org_name": "example", "username": "svc"})
		require.NoError(t, err)

		assert.True(t, settings.Sandbox)
		assert.False(t, settings.Caching)
		assert.Equal(t, tdx.AuthTypePassword, settings.AuthType)
		assert.Equal(t, "-0500", settings.Timezone)
		assert.Equal(t, "ERROR", settings.LogLevel)
		assert.Equal(t, constants.DefaultRetries, settings.Retries)
		assert.Equal(t, constants.DefaultHTTPTimeout, settings.Timeout)
		assert.Empty(t, settings.File)

		apiURL, err := settings.APIURL()
		require.NoError(t, err)
		assert.Equal(t, "https://example.teamdynamix.com/SBTDWebApi/api", apiURL)
	})

	t.Run("full host in production", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"full_host": "its.example.edu",
			"sandbox":   false,
			"username":  "svc",
		})
		require.NoError(t, err)

		apiURL, err := settings.APIURL()
		require.NoError(t, err)
		assert.Equal(t, "https://its.example.edu/TDWebApi/api", apiURL)
	})

	t.Run("base URL wins over host settings", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"org_name": "example",
			"base_url": "http://127.0.0.1:8080/TDWebApi/api/",
			"username": "svc",
		})
		require.NoError(t, err)

		apiURL, err := settings.APIURL()
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:8080/TDWebApi/api", apiURL)
	})

	t.Run("no host", func(t *testing.T) {
		t.Parallel()

		_, err := load(t, map[string]interface{}{"username": "svc"})
		require.ErrorIs(t, err, tdxclient.ErrInvalidSettings)
		assert.ErrorIs(t, err, constants.ErrNoHost)
	})

	t.Run("values nested under the section name", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"TDX API Settings": map[string]interface{}{
				"org_name":      "example",
				"username":      "svc",
				"ticket_app_id": 40,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "example", settings.OrgName)
		assert.Equal(t, 40, settings.TicketAppID)
	})

	t.Run("legacy key spellings", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"orgName":     "legacy",
			"ticketAppId": "41",
			"assetAppId":  "51",
			"authType":    "password",
			"username":    "svc",
		})
		require.NoError(t, err)
		assert.Equal(t, "legacy", settings.OrgName)
		assert.Equal(t, 41, settings.TicketAppID)
		assert.Equal(t, 51, settings.AssetAppID)
	})

	t.Run("current spelling wins over legacy", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"orgname":  "old",
			"org_name": "new",
			"username": "svc",
		})
		require.NoError(t, err)
		assert.Equal(t, "new", settings.OrgName)
	})

	t.Run("durations and log levels", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"org_name":  "example",
			"username":  "svc",
			"timeout":   "45s",
			"log_level": "debug",
		})
		require.NoError(t, err)
		assert.Equal(t, 45*time.Second, settings.Timeout)
		assert.Equal(t, "DEBUG", settings.LogLevel)
	})
}

func TestLoadSettings_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		values  map[string]interface{}
		message string
	}{
		{
			name:    "malformed timezone",
			values:  map[string]interface{}{"timezone": "Eastern"},
			message: constants.ErrInvalidTimezone.Error(),
		},
		{
			name:    "unknown auth type",
			values:  map[string]interface{}{"auth_type": "kerberos"},
			message: "auth_type must be one of",
		},
		{
			name:    "password auth without username",
			values:  map[string]interface{}{"username": ""},
			message: "username is required",
		},
		{
			name:    "token auth without token",
			values:  map[string]interface{}{"auth_type": "token"},
			message: "token is required",
		},
		{
			name:    "nats backend without URL",
			values:  map[string]interface{}{"cache_backend": "nats"},
			message: "nats_url is required",
		},
		{
			name:    "unknown cache backend",
			values:  map[string]interface{}{"cache_backend": "memcached"},
			message: "cache_backend must be one of",
		},
		{
			name:    "retries out of range",
			values:  map[string]interface{}{"retries": 0},
			message: "retries must be at least 1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values := map[string]interface{}{"org_name": "example", "username": "svc"}
			for k, v := range tt.values {
				values[k] = v
			}

			_, err := load(t, values)
			require.ErrorIs(t, err, tdxclient.ErrInvalidSettings)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestLoadSettings_Files(t *testing.T) {
	t.Parallel()

	t.Run("ini file found in search path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "tdxlib.ini", `[TDX API Settings]
orgname = example
sandbox = no
username = svc@example.edu
password = Prompt
ticketAppId = 40
assetAppId = 50
caching = yes
timezone = -0600
`)

		settings, err := tdxclient.LoadSettings(tdxclient.LoadOptions{SearchPaths: []string{dir}, IgnoreEnv: true})
		require.NoError(t, err)

		assert.Equal(t, path, settings.File)
		assert.Equal(t, "example", settings.OrgName)
		assert.False(t, settings.Sandbox)
		assert.True(t, settings.Caching)
		assert.Equal(t, 40, settings.TicketAppID)
		assert.Equal(t, 50, settings.AssetAppID)
		assert.True(t, settings.PromptsForPassword())

		config, err := settings.ToConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://example.teamdynamix.com/TDWebApi/api", config.BaseURL)
		assert.Empty(t, config.Password)
		assert.Equal(t, "-0600", config.Timezone)
	})

	t.Run("yaml file with nested section", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "custom.yaml", `TDX API Settings:
  org_name: yamlorg
  username: svc
  password: secret
  timezone: "+0100"
`)

		settings, err := tdxclient.LoadSettings(tdxclient.LoadOptions{File: path, IgnoreEnv: true})
		require.NoError(t, err)
		assert.Equal(t, "yamlorg", settings.OrgName)
		assert.Equal(t, "+0100", settings.Timezone)
		assert.False(t, settings.PromptsForPassword())
	})

	t.Run("values override the file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "tdxlib.yaml", "org_name: fileorg\nusername: svc\nasset_app_id: 50\n")

		settings, err := tdxclient.LoadSettings(tdxclient.LoadOptions{
			SearchPaths: []string{dir},
			Values:      map[string]interface{}{"org_name": "maporg"},
			IgnoreEnv:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, "maporg", settings.OrgName)
		assert.Equal(t, 50, settings.AssetAppID)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()

		_, err := tdxclient.LoadSettings(tdxclient.LoadOptions{
			File:      filepath.Join(t.TempDir(), "absent.yaml"),
			IgnoreEnv: true,
		})
		require.Error(t, err)
	})

	t.Run("no file in search paths", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{"org_name": "example", "username": "svc"})
		require.NoError(t, err)
		assert.Empty(t, settings.File)
	})
}

// Environment tests cannot run in parallel with t.Setenv.
func TestLoadSettings_Environment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tdxlib.yaml", "org_name: fileorg\nusername: svc\nticket_app_id: 40\n")

	t.Setenv("TDXLIB_ORG_NAME", "envorg")
	t.Setenv("TDXLIB_TICKET_APP_ID", "77")
	t.Setenv("TDXLIB_CACHING", "true")
	t.Setenv("TDXLIB_USERNAME", "")

	settings, err := tdxclient.LoadSettings(tdxclient.LoadOptions{
		SearchPaths: []string{dir},
		Values:      map[string]interface{}{"org_name": "maporg"},
	})
	require.NoError(t, err)

	assert.Equal(t, "envorg", settings.OrgName)
	assert.Equal(t, 77, settings.TicketAppID)
	assert.True(t, settings.Caching)
	// Empty variables are treated as unset.
	assert.Equal(t, "svc", settings.Username)

	ignored, err := tdxclient.LoadSettings(tdxclient.LoadOptions{
		SearchPaths: []string{dir},
		Values:      map[string]interface{}{"org_name": "maporg"},
		IgnoreEnv:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "maporg", ignored.OrgName)
	assert.Equal(t, 40, ignored.TicketAppID)
}

func TestSettings_ToConfig(t *testing.T) {
	t.Parallel()

	t.Run("redis second tier", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"org_name":      "example",
			"username":      "svc",
			"password":      "secret",
			"caching":       true,
			"cache_backend": "redis",
			"redis_addr":    "127.0.0.1:6379",
			"log_level":     "DEBUG",
		})
		require.NoError(t, err)

		config, err := settings.ToConfig()
		require.NoError(t, err)
		assert.Equal(t, "secret", config.Password)
		assert.True(t, config.Caching)
		assert.True(t, config.Debug)
		assert.NotNil(t, config.Logger)
		require.NotNil(t, config.Cache)
		assert.Equal(t, tdx.CacheTypeRedis, config.Cache.Type)
		assert.Equal(t, "127.0.0.1:6379", config.Cache.Redis.Addr)
	})

	t.Run("nats second tier", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"org_name":      "example",
			"username":      "svc",
			"cache_backend": "nats",
			"nats_url":      "nats://127.0.0.1:4222",
		})
		require.NoError(t, err)

		config := settings.CacheConfig()
		require.NotNil(t, config)
		assert.Equal(t, tdx.CacheTypeNATS, config.Type)
		assert.Equal(t, constants.DefaultNATSBucket, config.NATS.Bucket)
	})

	t.Run("tables only by default", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{"org_name": "example", "username": "svc"})
		require.NoError(t, err)
		assert.Nil(t, settings.CacheConfig())
	})

	t.Run("token auth", func(t *testing.T) {
		t.Parallel()

		settings, err := load(t, map[string]interface{}{
			"org_name":  "example",
			"auth_type": "token",
			"token":     "eyJ...",
		})
		require.NoError(t, err)
		assert.False(t, settings.PromptsForPassword())

		config, err := settings.ToConfig()
		require.NoError(t, err)
		assert.Equal(t, tdx.AuthTypeToken, config.AuthType)
		assert.Equal(t, "eyJ...", config.Token)
	})
}
