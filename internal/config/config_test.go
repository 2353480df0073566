package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProbe_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadProbe(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.Fuzz.Parallelism)
	assert.Equal(t, 100*time.Millisecond, cfg.Fuzz.Delay())
	assert.Equal(t, 5*time.Second, cfg.Fuzz.Timeout())
	assert.Equal(t, "action-discovery", cfg.Fuzz.Strategy)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoadProbe_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
gateway_url: "http://game.example.com/amf"
fuzz:
  strategy: parameter-boundary
  parallelism: 2
database:
  host: 10.0.0.5
`), 0o644))

	cfg, err := LoadProbe(path)
	require.NoError(t, err)
	assert.Equal(t, "http://game.example.com/amf", cfg.GatewayURL)
	assert.Equal(t, "parameter-boundary", cfg.Fuzz.Strategy)
	assert.Equal(t, int64(2), cfg.Fuzz.Parallelism)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Fuzz.DelayMillis)
	assert.True(t, cfg.Database.Enabled())
	assert.Contains(t, cfg.Database.DSN(), "10.0.0.5:5432")
}

func TestLoadProbe_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fuzz: ["), 0o644))
	_, err := LoadProbe(path)
	assert.Error(t, err)
}
