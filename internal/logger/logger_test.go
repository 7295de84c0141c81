package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/minibooks/internal/config"
)

func TestJSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("entry", "je-1").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "shown", rec["message"])
	assert.Equal(t, "je-1", rec["entry"])
	assert.Equal(t, "minibooks", rec["app"])
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "loud", Format: "json"}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDebugAddsCaller(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	log.Debug().Msg("x")
	assert.Contains(t, buf.String(), `"caller"`)
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "info", Format: "console"}, &buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}
