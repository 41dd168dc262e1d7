package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCacheDir(t *testing.T) {
	t.Run("environment override", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(CacheDirEnv, dir)

		got, err := GetCacheDir()
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("default under home", func(t *testing.T) {
		t.Setenv(CacheDirEnv, "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := GetCacheDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".cache", "kagglehub"), got)
	})

	t.Run("override observed on every call", func(t *testing.T) {
		first, second := t.TempDir(), t.TempDir()
		t.Setenv(CacheDirEnv, first)
		got, err := GetCacheDir()
		require.NoError(t, err)
		assert.Equal(t, first, got)

		t.Setenv(CacheDirEnv, second)
		got, err = GetCacheDir()
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})
}
