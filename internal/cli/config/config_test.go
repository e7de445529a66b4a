package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/VasilisMylonas/libreflect/internal/config"
)

func execute(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()

	cmd := NewConfigCmd(func() *config.Loader { return config.NewFileLoader(path) })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	out, err := execute(t, path, "init")
	require.NoError(t, err)
	assert.Equal(t, "✓ Wrote "+path+"\n", out)
	assert.FileExists(t, path)

	_, err = execute(t, path, "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, path, "init", "--force")
	assert.NoError(t, err)
}

func TestConfigView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: xml\nmax_depth: 5\n"), 0o644))
	t.Setenv("LIBREFLECT_CACHE_SIZE", "7")

	out, err := execute(t, path, "view")
	require.NoError(t, err)

	var got config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "xml", got.Format)
	assert.Equal(t, 5, got.MaxDepth)
	assert.Equal(t, 7, got.CacheSize)
	assert.Equal(t, config.SchemaVersion, got.Version)
}

func TestConfigValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, path, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	require.NoError(t, os.WriteFile(path, []byte("format: toml\ncache_size: -4\n"), 0o644))
	_, err = execute(t, path, "validate")
	require.Error(t, err)

	var verr *config.MultiValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
}

func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := execute(t, path, "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}
