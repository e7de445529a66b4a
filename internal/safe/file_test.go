package safe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Run("reads regular file", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "source.txt")
		content := []byte("test content")
		require.NoError(t, os.WriteFile(src, content, 0o644))

		got, err := ReadFile(src, nil)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("rejects symlink by default", func(t *testing.T) {
		tmpDir := t.TempDir()
		src := filepath.Join(tmpDir, "source.txt")
		link := filepath.Join(tmpDir, "link.txt")
		require.NoError(t, os.WriteFile(src, []byte("test"), 0o644))
		require.NoError(t, os.Symlink(src, link))

		_, err := ReadFile(link, nil)
		assert.Error(t, err)
	})

	t.Run("allows symlink when enabled", func(t *testing.T) {
		tmpDir := t.TempDir()
		src := filepath.Join(tmpDir, "source.txt")
		link := filepath.Join(tmpDir, "link.txt")
		require.NoError(t, os.WriteFile(src, []byte("test"), 0o644))
		require.NoError(t, os.Symlink(src, link))

		got, err := ReadFile(link, &ReadOptions{AllowSymlinks: true})
		require.NoError(t, err)
		assert.Equal(t, "test", string(got))
	})

	t.Run("rejects file exceeding max size", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "source.txt")
		require.NoError(t, os.WriteFile(src, make([]byte, 1024), 0o644))

		_, err := ReadFile(src, &ReadOptions{MaxSize: 512})
		assert.Error(t, err)
	})

	t.Run("rejects directory", func(t *testing.T) {
		_, err := ReadFile(t.TempDir(), nil)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "nope"), nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.yaml")

	require.NoError(t, WriteFile(path, []byte("a: 1\n"), 0o600))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, WriteFile(path, []byte("a: 2\n"), 0o600))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a: 2\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}
