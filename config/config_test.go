package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConstants(t *testing.T) {
	cfg := DefaultConstants()
	assert.Equal(t, 208, cfg.FrameBytes)
	assert.Equal(t, 8, cfg.PointerScale)
	assert.Equal(t, 100, cfg.MaxFunctions)
}

func TestLoadWithEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConstants(), cfg)
}

func TestLoadOverlaysTOMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jcc.toml")
	err := os.WriteFile(path, []byte("frame_bytes = 64\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.FrameBytes)
	// Fields absent from the file keep their default value.
	assert.Equal(t, 8, cfg.PointerScale)
	assert.Equal(t, 100, cfg.MaxFunctions)
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	_, err := Load("/no/such/file.toml")
	require.Error(t, err)
}
