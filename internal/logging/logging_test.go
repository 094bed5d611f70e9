package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	// Given: a config pointing at a temp log file
	path := filepath.Join(t.TempDir(), "inkdex.log")
	cfg := Config{
		Level:         "debug",
		FilePath:      path,
		MaxSizeMB:     1,
		MaxFiles:      2,
		WriteToStderr: false,
	}

	// When: logging through the configured logger
	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)

	logger.Info("test message", slog.String("key", "value"))
	cleanup()

	// Then: the log file holds a JSON line with the message
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(strings.Split(string(data), "\n")[0])
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestSetup_LevelFiltersMessages(t *testing.T) {
	// Given: an info-level logger
	path := filepath.Join(t.TempDir(), "inkdex.log")
	cfg := Config{Level: "info", FilePath: path, MaxSizeMB: 1, MaxFiles: 2}

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)

	// When: logging below and at the level
	logger.Debug("too quiet")
	logger.Info("loud enough")
	cleanup()

	// Then: only the info line is written
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "too quiet")
	assert.Contains(t, string(data), "loud enough")
}

func TestRotatingWriter_RotatesAtSizeLimit(t *testing.T) {
	// Given: a writer with a 1MB limit
	dir := t.TempDir()
	path := filepath.Join(dir, "inkdex.log")
	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// When: writing past the limit
	chunk := make([]byte, 64*1024)
	for i := range chunk {
		chunk[i] = 'x'
	}
	for i := 0; i < 20; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	// Then: a rotated file exists alongside the active one
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2)
}

func TestDefaultLogPath_UnderLogDir(t *testing.T) {
	assert.Equal(t, filepath.Join(DefaultLogDir(), "inkdex.log"), DefaultLogPath())
	assert.True(t, strings.HasSuffix(DefaultLogDir(), filepath.Join(".inkdex", "logs")))
}
