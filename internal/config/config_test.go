package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 1280, cfg.InputHeight)
	assert.Equal(t, 1280, cfg.InputWidth)
	assert.InDelta(t, 0.25, cfg.ConfThresh, 1e-9)
	assert.InDelta(t, 0.45, cfg.NMSThresh, 1e-9)
	assert.Equal(t, DefaultProject, cfg.Project)
	assert.Equal(t, DefaultModelsDir, cfg.ModelsDir)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := NewDefaultConfig()
	cfg.SetInputHeight(640)
	cfg.SetConfThresh(0.5)
	cfg.SetProject("demo")
	cfg.SetHideLabels(true)
	require.NoError(t, cfg.Save(path))

	loaded := LoadConfigFile(path)
	assert.Equal(t, 640, loaded.GetInputHeight())
	assert.InDelta(t, 0.5, loaded.GetConfThresh(), 1e-9)
	assert.Equal(t, "demo", loaded.GetProject())
	assert.True(t, loaded.GetHideLabels())
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg := LoadConfigFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, NewDefaultConfig().InputHeight, cfg.InputHeight)
}

func TestLoadCorruptFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg := LoadConfigFile(path)
	assert.Equal(t, NewDefaultConfig().Project, cfg.Project)
}
