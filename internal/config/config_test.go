package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "powermap", cfg.Name)
	assert.Equal(t, 20.0, cfg.Thresholds.ReformPct)
	assert.Equal(t, 18.3, cfg.Thresholds.NonWhitePct)
	assert.Equal(t, 0.80, cfg.Thresholds.FuzzyRatio)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.NotEmpty(t, cfg.Snapshot.Pages)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default().Thresholds, cfg.Thresholds)
}

func TestLoadFileExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  reform_pct: 25.0\n"), 0644))
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.Thresholds.ReformPct)
	assert.Equal(t, 18.3, cfg.Thresholds.NonWhitePct)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, ".powermap")
	require.NoError(t, os.MkdirAll(dir, 0755))
	yaml := `
thresholds:
  reform_pct: 25.0
server:
  addr: ":9090"
  watch: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load(ws)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.Thresholds.ReformPct)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.Watch)
	// Unset keys keep their defaults.
	assert.Equal(t, 18.3, cfg.Thresholds.NonWhitePct)
	assert.Equal(t, "data", cfg.Paths.DataDir)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, ".powermap")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("\t:bad"), 0644))

	_, err := Load(ws)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/ws", "data"), cfg.Resolve("/ws", "data"))
	assert.Equal(t, "/abs/data", cfg.Resolve("/ws", "/abs/data"))
}

func TestSaveRoundTrip(t *testing.T) {
	ws := t.TempDir()
	cfg := Default()
	cfg.Thresholds.ReformPct = 22.5
	require.NoError(t, cfg.Save(ws))

	loaded, err := Load(ws)
	require.NoError(t, err)
	assert.Equal(t, 22.5, loaded.Thresholds.ReformPct)
}
