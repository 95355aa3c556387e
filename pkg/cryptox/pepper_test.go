package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPepper(t *testing.T) {
	t.Run("empty path disables pepper", func(t *testing.T) {
		pepper, err := LoadPepper("")
		require.NoError(t, err)
		require.Empty(t, pepper)
	})

	t.Run("generates then reloads", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "pepper")

		first, err := LoadPepper(path)
		require.NoError(t, err)
		require.NotEmpty(t, first)

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0600), info.Mode().Perm())

		second, err := LoadPepper(path)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("trims existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pepper")
		require.NoError(t, os.WriteFile(path, []byte("static-pepper\n"), 0600))

		pepper, err := LoadPepper(path)
		require.NoError(t, err)
		require.Equal(t, "static-pepper", pepper)
	})
}
