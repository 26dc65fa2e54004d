package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")

	l.Info().Msg("hidden")
	l.Warn().Str("path", "/auth/me").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/auth/me", entry["path"])
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zerolog.Disabled, parseLogLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel("nonsense"))
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "console")

	l.Debug().Str("method", "GET").Msg("request")
	out := buf.String()
	assert.Contains(t, out, "request")
	assert.Contains(t, out, "GET")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output is not JSON")
}
