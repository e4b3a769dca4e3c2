package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(&buf, Options{Level: "WARN", App: "scheduler"}), "generator")

	l.Info().Msg("hidden")
	l.Warn().Int("skipped", 2).Msg("visible")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "visible", line["message"])
	assert.Equal(t, "generator", line["component"])
	assert.Equal(t, "scheduler", line["app"])
	assert.EqualValues(t, 2, line["skipped"])
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "chatty"})
	l.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())
	l.Info().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestNew_TeesIntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	var buf bytes.Buffer
	l := New(&buf, Options{File: path})
	l.Info().Msg("both")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"both"`)
	assert.Contains(t, buf.String(), `"message":"both"`)
}
