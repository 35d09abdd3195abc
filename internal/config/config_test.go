package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// into dir and restores the previous working directory when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "NAME", cfg.Layers.NameField)
	assert.Equal(t, "GEOID", cfg.Layers.CodeField)
	assert.Equal(t, "longitude", cfg.Layers.XColumn)
	assert.Equal(t, "latitude", cfg.Layers.YColumn)
	assert.Equal(t, 4326, cfg.Layers.SRID)

	assert.Equal(t, "fail", cfg.Match.Ambiguous)

	assert.Equal(t, 3, cfg.Neighbor.K)
	assert.Equal(t, 0.0, cfg.Neighbor.MinDistance)
	assert.Equal(t, 700.0, cfg.Neighbor.MaxDistance)
	assert.Equal(t, "queen", cfg.Neighbor.Contiguity)

	assert.Equal(t, "png", cfg.Render.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
layers:
  name_field: NAMELSAD
  srid: 4269
neighbor:
  k: 8
  contiguity: rook
store:
  path: runs.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spatial.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "NAMELSAD", cfg.Layers.NameField)
	assert.Equal(t, 4269, cfg.Layers.SRID)
	assert.Equal(t, 8, cfg.Neighbor.K)
	assert.Equal(t, "rook", cfg.Neighbor.Contiguity)
	assert.Equal(t, "runs.db", cfg.Store.Path)
	// Untouched keys keep their defaults.
	assert.Equal(t, "GEOID", cfg.Layers.CodeField)
	assert.Equal(t, "fail", cfg.Match.Ambiguous)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SPATIAL_MATCH_AMBIGUOUS", "first")
	t.Setenv("SPATIAL_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "first", cfg.Match.Ambiguous)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spatial.yaml"), []byte("layers: [broken"), 0o644))
	chdir(t, dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{name: "json info", cfg: LogConfig{Level: "info", Format: "json"}},
		{name: "console debug", cfg: LogConfig{Level: "debug", Format: "console"}},
		{name: "bad level", cfg: LogConfig{Level: "chatty", Format: "json"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
