package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")

		dir, err := Dir()
		require.NoError(t, err)
		assert.Equal(t, "/custom/config/squish", dir)
	})

	t.Run("defaults to ~/.config when XDG_CONFIG_HOME not set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")

		home, err := os.UserHomeDir()
		require.NoError(t, err)

		dir, err := Dir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "squish"), dir)
	})
}

func TestFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	path, err := File()
	require.NoError(t, err)
	assert.Equal(t, "/custom/config/squish/config.yaml", path)
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	defaults := Defaults()
	assert.Equal(t, "gzip", defaults["format"])
	assert.Equal(t, "1MiB", defaults["block-size"])
	assert.Equal(t, "auto", defaults["progress"])
}
