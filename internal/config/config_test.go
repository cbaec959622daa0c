package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "disease_detection_log.csv", cfg.Log.Path)
	assert.Equal(t, "random", cfg.Selector.Kind)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
capture:
  source: folder
  dir: ./frames
  follow: true
  idle: 2s
selector:
  kind: sequence
  names: [Candida, E. coli]
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "folder", cfg.Capture.Source)
	assert.Equal(t, 2*time.Second, cfg.Capture.Idle)
	assert.Equal(t, 640, cfg.Capture.Width, "untouched keys keep defaults")
	assert.Equal(t, []string{"Candida", "E. coli"}, cfg.Selector.Names)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("capture:\n  colour: red\n"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestDecode_EmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	cfg := Default()
	cfg.Capture.Source = "folder"
	cfg.Capture.Width = 0
	cfg.Display.Format = "gif"
	cfg.Selector.Kind = "fixed"
	cfg.Metrics.Addr = "nope"
	cfg.Log.Path = ""

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{
		"capture.dir is required",
		"capture.width must be at least 0 (exclusive)",
		"display.format must be one of: png jpeg",
		"selector.names is required",
		"metrics.addr must be host:port",
		"log.path is required",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_Metrics(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Addr = "127.0.0.1:9108"
	assert.NoError(t, cfg.Validate())
}
