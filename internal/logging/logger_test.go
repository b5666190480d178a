package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Debug("[capture] window armed", "window", "w1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "[capture] window armed", record["msg"])
	assert.Equal(t, "w1", record["window"])
}

func TestSetLevelFiltersAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Output: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	require.NoError(t, logger.SetLevel("debug"))
	assert.Equal(t, slog.LevelDebug, logger.Level())
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	assert.Error(t, logger.SetLevel("nope"))
	assert.Equal(t, slog.LevelDebug, logger.Level())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		" debug ": slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}
