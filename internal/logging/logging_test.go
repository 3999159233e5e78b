package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fivetwenty-io/tdx-client/internal/logging"
	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ tdx.Logger = (*logging.Logger)(nil)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel(""))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("verbose"))
}

func TestLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	log.Debug("hidden", nil)
	log.Info("HTTP Request", map[string]interface{}{"method": "GET", "path": "/locations"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "HTTP Request", record["msg"])
	assert.Equal(t, "GET", record["method"])
	assert.Equal(t, "/locations", record["path"])
}

func TestLogger_TextDefaultsToError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := logging.New(logging.Options{Writer: &buf})
	log.Warn("rate limited", nil)
	assert.Empty(t, buf.String())

	log.Error("authentication failed", map[string]interface{}{"error": errors.New("401 Unauthorized")})
	assert.Contains(t, buf.String(), "authentication failed")
	assert.Contains(t, buf.String(), "401 Unauthorized")
	assert.NotContains(t, buf.String(), "\x1b[", "no color when not a terminal")

	log.SetLevel(slog.LevelWarn)
	log.Warn("rate limited", nil)
	assert.Contains(t, buf.String(), "rate limited")
}

func TestLogger_Nop(t *testing.T) {
	t.Parallel()

	log := logging.NewNop()
	log.Error("nothing", map[string]interface{}{"k": "v"})
	assert.NotNil(t, log.Slog())
}
