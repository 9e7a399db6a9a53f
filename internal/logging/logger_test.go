package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricirt/sender-queue/internal/config"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sender.log")

	logger, err := New(config.LogConfig{File: path, Level: "info"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("Process Start")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Process Start", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestOutputPaths(t *testing.T) {
	assert.Equal(t, []string{"stderr"}, outputPaths(config.LogConfig{}))
	assert.Equal(t, []string{"a.log"}, outputPaths(config.LogConfig{File: "a.log"}))
	assert.Equal(t, []string{"a.log", "stderr"}, outputPaths(config.LogConfig{File: "a.log", Stderr: true}))
}
