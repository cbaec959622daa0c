package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	l, err := New(io.Discard, Options{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.ErrorLevel))

	_, err = New(io.Discard, Options{Level: "loud"})
	assert.Error(t, err)
	_, err = New(io.Discard, Options{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "info", Format: "json"})
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("frame", zap.Int("cells", 3))
	require.NoError(t, l.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "frame", line["msg"])
	assert.Equal(t, float64(3), line["cells"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "debug"})
	require.NoError(t, err)
	l.Debug("state", zap.String("to", "Running"))
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), `"to": "Running"`)
}
