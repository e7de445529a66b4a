package reflection

import (
	"debug/dwarf"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VasilisMylonas/libreflect/internal/testutil"
)

const originAddr = 0x4000

// fixture builds debugging information for a small C program:
//
//	struct point { int x; int y; };
//	typedef struct point point_t;
//	struct person { const char *name; int age; };
//	union number { int i; double d; };
//	struct buffer { void *data; char *bytes; };
//	typedef struct { int anon; } anon_t;
//	enum color { RED, GREEN };
//	extern int add(int a, int b) { int sum; ... }
//	static void helper(void) { struct hidden { int h; }; }
//	struct point origin;
//
// It is preceded by a unit with no children.
func fixture() *testutil.DWARFBuilder {
	b := testutil.NewDWARFBuilder()
	b.Unit("empty.c")

	cu := b.Unit("fixture.c")
	intT := cu.BaseType("int", 4, testutil.EncSigned)
	charT := cu.BaseType("char", 1, testutil.EncSignedChar)
	doubleT := cu.BaseType("double", 8, testutil.EncFloat)
	cu.BaseType("_Complex double", 16, testutil.EncComplexFloat)
	cstr := cu.Pointer(cu.Const(charT))
	voidp := cu.Pointer(nil)
	charp := cu.Pointer(charT)

	point := cu.Struct("point", 8,
		testutil.Field{Name: "x", Type: intT, Offset: 0},
		testutil.Field{Name: "y", Type: intT, Offset: 4},
	)
	pointT := cu.Typedef("point_t", point)
	cu.Typedef("cpoint_t", cu.Const(cu.Volatile(pointT)))

	cu.Struct("person", uintptr(2*testutil.PtrSize),
		testutil.Field{Name: "name", Type: cstr, Offset: 0},
		testutil.Field{Name: "age", Type: intT, Offset: uintptr(testutil.PtrSize)},
	)
	cu.Union("number", 8,
		testutil.Field{Name: "i", Type: intT, Offset: 0},
		testutil.Field{Name: "d", Type: doubleT, Offset: 0},
	)
	cu.Struct("buffer", uintptr(2*testutil.PtrSize),
		testutil.Field{Name: "data", Type: voidp, Offset: 0},
		testutil.Field{Name: "bytes", Type: charp, Offset: uintptr(testutil.PtrSize)},
	)
	cu.Typedef("anon_t", cu.Struct("", 4, testutil.Field{Name: "anon", Type: intT, Offset: 0}))
	cu.Enum("color", 4)
	cu.Typedef("quad", cu.Array(intT, 4))

	weird := cu.Add(dwarf.TagStructType, testutil.Name("weird"), testutil.Udata(dwarf.AttrByteSize, 4))
	weird.Add(dwarf.TagMember,
		testutil.Name("w"),
		testutil.Ref(dwarf.AttrType, intT),
		testutil.Exprloc(dwarf.AttrDataMemberLoc, []byte{0x23, 0x00}))
	weird.Add(dwarf.TagMember, testutil.Name("untyped"))

	add := cu.Subprogram("add", intT, true)
	add.Attrs = append(add.Attrs,
		testutil.Udata(dwarf.AttrDeclLine, 12),
		testutil.Udata(dwarf.AttrDeclColumn, 5))
	add.Param("a", intT)
	add.Param("b", intT)
	add.Add(dwarf.TagLexDwarfBlock)
	add.Variable("sum", intT, 0)

	helper := cu.Subprogram("helper", nil, false)
	helper.Struct("hidden", 4, testutil.Field{Name: "h", Type: intT, Offset: 0})

	cu.Variable("origin", point, originAddr)
	cu.Variable("local_only", intT, 0)
	cu.Add(dwarf.TagVariable,
		testutil.Name("in_register"),
		testutil.Ref(dwarf.AttrType, intT),
		testutil.Exprloc(dwarf.AttrLocation, []byte{0x50}))

	other := b.Unit("other.c")
	otherInt := other.BaseType("int", 4, testutil.EncSigned)
	other.Struct("point", 12,
		testutil.Field{Name: "x", Type: otherInt, Offset: 0},
		testutil.Field{Name: "y", Type: otherInt, Offset: 4},
		testutil.Field{Name: "z", Type: otherInt, Offset: 8},
	)
	other.Subprogram("add", otherInt, true)

	return b
}

func newFixtureDomain(t *testing.T) *Domain {
	t.Helper()
	data, err := fixture().Data()
	require.NoError(t, err)

	d, err := FromDWARF(data, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func mustType(t *testing.T, d *Domain, name string) Type {
	t.Helper()
	typ, err := d.TypeByName(name)
	require.NoError(t, err)
	return typ
}
