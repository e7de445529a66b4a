package cli

import (
	"bytes"
	"debug/dwarf"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"testing"
	"unsafe"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/VasilisMylonas/libreflect/internal/testutil"
)

const (
	dataAddr   = 0x1000
	rodataAddr = 0x2000
	bssAddr    = 0x3000
)

type cAB struct {
	A int32
	B int32
}

type cPerson struct {
	Name *byte
	Age  int32
}

func init() {
	color.NoColor = true
}

// fixtureBinary writes an ELF file declaring
//
//	struct ab { int a; int b; };
//	typedef struct ab ab_t;
//	struct person { const char *name; int age; };
//	int add(int a, int b) { int sum; ... }
//	struct ab origin = {7, 8};            // line 3, column 11
//	struct person owner = {"hello", 41};
//	struct ab zeroed;
func fixtureBinary(t *testing.T) string {
	t.Helper()

	b := testutil.NewDWARFBuilder()
	cu := b.Unit("app.c")
	intT := cu.BaseType("int", 4, testutil.EncSigned)
	charT := cu.BaseType("char", 1, testutil.EncSignedChar)

	var ab cAB
	abT := cu.Struct("ab", unsafe.Sizeof(ab),
		testutil.Field{Name: "a", Type: intT, Offset: unsafe.Offsetof(ab.A)},
		testutil.Field{Name: "b", Type: intT, Offset: unsafe.Offsetof(ab.B)},
	)
	cu.Typedef("ab_t", abT)
	var p cPerson
	personT := cu.Struct("person", unsafe.Sizeof(p),
		testutil.Field{Name: "name", Type: cu.Pointer(cu.Const(charT)), Offset: unsafe.Offsetof(p.Name)},
		testutil.Field{Name: "age", Type: intT, Offset: unsafe.Offsetof(p.Age)},
	)

	add := cu.Subprogram("add", intT, true)
	add.Param("a", intT)
	add.Param("b", intT)
	add.Variable("sum", intT, 0)

	origin := cu.Variable("origin", abT, dataAddr)
	origin.Attrs = append(origin.Attrs,
		testutil.Udata(dwarf.AttrDeclLine, 3),
		testutil.Udata(dwarf.AttrDeclColumn, 11))
	cu.Variable("owner", personT, dataAddr+16)
	cu.Variable("zeroed", abT, bssAddr)
	cu.Variable("extern_only", intT, 0)

	data := make([]byte, 16+unsafe.Sizeof(p))
	binary.NativeEndian.PutUint32(data[0:], 7)
	binary.NativeEndian.PutUint32(data[4:], 8)
	name := data[16+unsafe.Offsetof(p.Name):]
	if testutil.PtrSize == 8 {
		binary.NativeEndian.PutUint64(name, rodataAddr)
	} else {
		binary.NativeEndian.PutUint32(name, rodataAddr)
	}
	binary.NativeEndian.PutUint32(data[16+unsafe.Offsetof(p.Age):], 41)

	sections := []testutil.ELFSection{
		testutil.DataSection(".data", dataAddr, data),
		testutil.DataSection(".rodata", rodataAddr, []byte("hello\x00")),
		testutil.BSSSection(".bss", bssAddr, 64),
	}
	sections = append(sections, testutil.DebugSections(b)...)
	return testutil.WriteELF(t, sections...)
}

// run executes the command line with an isolated config directory and
// returns what it printed to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	if _, set := os.LookupEnv("LIBREFLECT_CONFIG_DIR"); !set {
		t.Setenv("LIBREFLECT_CONFIG_DIR", t.TempDir())
	}

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	ctx, cancel := testutil.NewTestContext()
	defer cancel()

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}
