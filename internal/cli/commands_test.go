package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VasilisMylonas/libreflect/pkg/reflection"
	"github.com/VasilisMylonas/libreflect/pkg/serialize"
	"github.com/VasilisMylonas/libreflect/pkg/version"
)

func TestDumpCommand(t *testing.T) {
	bin := fixtureBinary(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"json by default", []string{"dump", bin, "origin"}, "{\"a\":7,\"b\":8}\n"},
		{"string member", []string{"dump", bin, "owner"}, "{\"name\":\"hello\",\"age\":41}\n"},
		{"bss is zero", []string{"dump", bin, "zeroed"}, "{\"a\":0,\"b\":0}\n"},
		{"xml gets a root element", []string{"dump", bin, "owner", "--format", "xml"}, "<owner><name>hello</name><age>41</age></owner>\n"},
		{"c literal", []string{"dump", bin, "origin", "-f", "C"}, "{\n.a = 7,\n.b = 8,\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDumpCommandFormatFromEnv(t *testing.T) {
	t.Setenv("LIBREFLECT_FORMAT", "xml")

	out, err := run(t, "dump", fixtureBinary(t), "origin")
	require.NoError(t, err)
	assert.Equal(t, "<origin><a>7</a><b>8</b></origin>\n", out)
}

func TestDumpCommandFormatFromConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: c\n"), 0o644))

	out, err := run(t, "--config", cfgPath, "dump", fixtureBinary(t), "origin")
	require.NoError(t, err)
	assert.Equal(t, "{\n.a = 7,\n.b = 8,\n}\n", out)
}

func TestDumpCommandErrors(t *testing.T) {
	bin := fixtureBinary(t)

	t.Run("unknown variable", func(t *testing.T) {
		_, err := run(t, "dump", bin, "missing")
		assert.ErrorIs(t, err, reflection.ErrNotFound)
	})

	t.Run("no static address", func(t *testing.T) {
		_, err := run(t, "dump", bin, "extern_only")
		assert.ErrorIs(t, err, reflection.ErrNoData)
		assert.ErrorContains(t, err, "no static address")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "dump", bin, "origin", "--format", "yaml")
		assert.ErrorIs(t, err, serialize.ErrUnknownFormat)
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := run(t, "dump", filepath.Join(t.TempDir(), "nope"), "origin")
		assert.ErrorIs(t, err, reflection.ErrCannotOpenFile)
	})

	t.Run("wrong arity", func(t *testing.T) {
		_, err := run(t, "dump", bin)
		assert.Error(t, err)
	})
}

func TestTypeCommand(t *testing.T) {
	bin := fixtureBinary(t)

	t.Run("struct as json", func(t *testing.T) {
		out, err := run(t, "type", bin, "ab", "-o", "json")
		require.NoError(t, err)

		info := decode[typeInfo](t, out)
		assert.Equal(t, "struct ab", info.Name)
		assert.Equal(t, "struct", info.Kind)
		assert.Equal(t, int64(8), info.Size)
		assert.Equal(t, []memberInfo{
			{Name: "a", Type: "int", Offset: 0, Size: 4},
			{Name: "b", Type: "int", Offset: 4, Size: 4},
		}, info.Members)
	})

	t.Run("typedef", func(t *testing.T) {
		out, err := run(t, "type", bin, "ab_t", "-o", "json")
		require.NoError(t, err)

		info := decode[typeInfo](t, out)
		assert.Equal(t, "ab_t", info.Name)
		assert.Equal(t, "typedef", info.Kind)
		assert.Equal(t, "struct ab", info.Underlying)
		assert.Len(t, info.Members, 2)
	})

	t.Run("builtin", func(t *testing.T) {
		out, err := run(t, "type", bin, "int")
		require.NoError(t, err)
		assert.Equal(t, "int\n  kind: builtin\n  size: 4 bytes\n  repr: int\n", out)
	})

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "type", bin, "ab")
		require.NoError(t, err)
		assert.Equal(t, "struct ab\n  kind: struct\n  size: 8 bytes\n\nMember   Type   Offset   Size\na        int    0        4\nb        int    4        4\n", out)
	})

	t.Run("tree", func(t *testing.T) {
		out, err := run(t, "type", bin, "person", "--tree")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "struct person\n├─ name: const char* (offset 0, "), out)
		assert.Contains(t, out, "└─ age: int (offset ")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := run(t, "type", bin, "nothing")
		assert.ErrorIs(t, err, reflection.ErrNotFound)
	})

	t.Run("bad output", func(t *testing.T) {
		_, err := run(t, "type", bin, "ab", "-o", "csv")
		assert.ErrorContains(t, err, "unsupported output")
	})
}

func TestFuncCommand(t *testing.T) {
	out, err := run(t, "func", fixtureBinary(t), "add", "-o", "json")
	require.NoError(t, err)

	info := decode[functionInfo](t, out)
	assert.Equal(t, "int add(int a, int b)", info.Signature)
	assert.Equal(t, "int", info.Returns)
	require.NotNil(t, info.Extern)
	assert.True(t, *info.Extern)
	assert.Equal(t, []variableInfo{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}}, info.Params)
	assert.Equal(t, []variableInfo{{Name: "sum", Type: "int"}}, info.Locals)
}

func TestFuncCommandTable(t *testing.T) {
	out, err := run(t, "func", fixtureBinary(t), "add")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "int add(int a, int b)\n\nparameters:\n"), out)
	assert.Contains(t, out, "locals:\nName   Type\nsum    int\n")
}

func TestVarCommand(t *testing.T) {
	bin := fixtureBinary(t)

	out, err := run(t, "var", bin, "origin", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, globalInfo{Name: "origin", Type: "struct ab", Address: "0x1000", Declared: "?:3:11"}, decode[globalInfo](t, out))

	out, err = run(t, "var", bin, "extern_only", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, globalInfo{Name: "extern_only", Type: "int", Address: "unavailable"}, decode[globalInfo](t, out))
}

func TestInfoCommand(t *testing.T) {
	bin := fixtureBinary(t)
	st, err := os.Stat(bin)
	require.NoError(t, err)

	out, err := run(t, "info", bin, "-o", "json")
	require.NoError(t, err)

	info := decode[binaryInfo](t, out)
	assert.Equal(t, bin, info.Path)
	assert.Equal(t, "ELF", info.Format)
	assert.Equal(t, st.Size(), info.Bytes)
	assert.Len(t, info.Fingerprint, 16)
	assert.Equal(t, 1, info.Units)
	assert.Greater(t, info.Entries, 10)
	assert.Equal(t, []string{".data", ".rodata", ".bss"}, info.Sections)

	out, err = run(t, "info", bin)
	require.NoError(t, err)
	assert.Contains(t, out, "Format:")
	assert.Contains(t, out, "ELF")
	assert.Contains(t, out, "bytes)")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "libreflect version "+version.Version)
	assert.Contains(t, out, version.Platform())
}

func TestGlobalFlags(t *testing.T) {
	bin := fixtureBinary(t)

	t.Run("bad log level", func(t *testing.T) {
		_, err := run(t, "--log-level", "loud", "info", bin)
		assert.ErrorContains(t, err, "unknown log level")
	})

	t.Run("trace logs stay off stdout", func(t *testing.T) {
		out, err := run(t, "--log-level", "trace", "--pretty=false", "dump", bin, "origin")
		require.NoError(t, err)
		assert.Equal(t, "{\"a\":7,\"b\":8}\n", out)
	})

	t.Run("invalid config file", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("max_depth: -1\n"), 0o644))

		_, err := run(t, "--config", cfgPath, "info", bin)
		assert.ErrorContains(t, err, "failed to load config")
	})
}

func TestConfigLocation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIBREFLECT_CONFIG_DIR", dir)

	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".libreflect", "config.yaml")+"\n", out)

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	out, err = run(t, "--config", explicit, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, explicit+"\n", out, "--config names the file and wins over the directory")
}
