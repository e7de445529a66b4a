package serialize

import (
	"debug/dwarf"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/VasilisMylonas/libreflect/internal/testutil"
	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

// Go mirrors of the C types described by fixture. Member offsets in the
// debugging information are taken from these declarations.
type (
	cAB struct {
		A int32
		B int32
	}

	cPerson struct {
		Name *byte
		Age  int32
	}

	cNode struct {
		Value int32
		Next  *cNode
	}

	cHolder struct {
		Ref    *cAB
		Opaque unsafe.Pointer
	}

	cNested struct {
		Inner cAB
		C     int32
	}

	cColored struct {
		Color int32
		Alpha uint8
	}

	cScalars struct {
		Ch    int8
		UCh   uint8
		Flag  bool
		Short int16
		UShrt uint16
		Long  int64
		ULL   uint64
		Flt   float32
		Dbl   float64
	}

	cWithArray struct {
		Len  int32
		Vals [2]int32
	}

	cWithUnion struct {
		Tag int32
		Val int64
	}
)

func fixture() *testutil.DWARFBuilder {
	b := testutil.NewDWARFBuilder()
	cu := b.Unit("serialize.c")

	intT := cu.BaseType("int", 4, testutil.EncSigned)
	charT := cu.BaseType("char", 1, testutil.EncSignedChar)
	ucharT := cu.BaseType("unsigned char", 1, testutil.EncUnsignedChar)
	boolT := cu.BaseType("_Bool", 1, testutil.EncBoolean)
	shortT := cu.BaseType("short", 2, testutil.EncSigned)
	ushortT := cu.BaseType("unsigned short", 2, testutil.EncUnsigned)
	longT := cu.BaseType("long", 8, testutil.EncSigned)
	ullT := cu.BaseType("unsigned long long", 8, testutil.EncUnsigned)
	floatT := cu.BaseType("float", 4, testutil.EncFloat)
	doubleT := cu.BaseType("double", 8, testutil.EncFloat)
	cu.BaseType("long double", 16, testutil.EncFloat)
	cu.BaseType("__float80", 10, testutil.EncFloat)
	cu.BaseType("_Complex double", 16, testutil.EncComplexFloat)
	cu.BaseType("_Decimal32", 4, testutil.EncDecimalFloat)
	cu.BaseType("int24", 3, testutil.EncSigned)
	cu.BaseType("char8_t", 1, testutil.EncUTF)
	cstr := cu.Pointer(cu.Const(charT))
	voidp := cu.Pointer(nil)

	var ab cAB
	abT := cu.Struct("ab", unsafe.Sizeof(ab),
		testutil.Field{Name: "a", Type: intT, Offset: unsafe.Offsetof(ab.A)},
		testutil.Field{Name: "b", Type: intT, Offset: unsafe.Offsetof(ab.B)},
	)
	abTypedef := cu.Typedef("ab_t", abT)
	cu.Typedef("cab_t", cu.Const(abTypedef))

	var p cPerson
	cu.Struct("person", unsafe.Sizeof(p),
		testutil.Field{Name: "name", Type: cstr, Offset: unsafe.Offsetof(p.Name)},
		testutil.Field{Name: "age", Type: intT, Offset: unsafe.Offsetof(p.Age)},
	)

	var n cNode
	node := cu.Struct("node", unsafe.Sizeof(n),
		testutil.Field{Name: "value", Type: intT, Offset: unsafe.Offsetof(n.Value)},
	)
	node.Add(dwarf.TagMember,
		testutil.Name("next"),
		testutil.Ref(dwarf.AttrType, cu.Pointer(node)),
		testutil.Data1(dwarf.AttrDataMemberLoc, uint8(unsafe.Offsetof(n.Next))))

	var h cHolder
	cu.Struct("holder", unsafe.Sizeof(h),
		testutil.Field{Name: "ref", Type: cu.Pointer(abTypedef), Offset: unsafe.Offsetof(h.Ref)},
		testutil.Field{Name: "opaque", Type: voidp, Offset: unsafe.Offsetof(h.Opaque)},
	)

	var nested cNested
	cu.Struct("nested", unsafe.Sizeof(nested),
		testutil.Field{Name: "inner", Type: abT, Offset: unsafe.Offsetof(nested.Inner)},
		testutil.Field{Name: "c", Type: intT, Offset: unsafe.Offsetof(nested.C)},
	)

	var colored cColored
	cu.Struct("colored", unsafe.Sizeof(colored),
		testutil.Field{Name: "color", Type: cu.Enum("color", 4), Offset: unsafe.Offsetof(colored.Color)},
		testutil.Field{Name: "alpha", Type: ucharT, Offset: unsafe.Offsetof(colored.Alpha)},
	)

	var s cScalars
	cu.Struct("scalars", unsafe.Sizeof(s),
		testutil.Field{Name: "ch", Type: charT, Offset: unsafe.Offsetof(s.Ch)},
		testutil.Field{Name: "uch", Type: ucharT, Offset: unsafe.Offsetof(s.UCh)},
		testutil.Field{Name: "flag", Type: boolT, Offset: unsafe.Offsetof(s.Flag)},
		testutil.Field{Name: "short", Type: shortT, Offset: unsafe.Offsetof(s.Short)},
		testutil.Field{Name: "ushort", Type: ushortT, Offset: unsafe.Offsetof(s.UShrt)},
		testutil.Field{Name: "long", Type: longT, Offset: unsafe.Offsetof(s.Long)},
		testutil.Field{Name: "ull", Type: ullT, Offset: unsafe.Offsetof(s.ULL)},
		testutil.Field{Name: "flt", Type: floatT, Offset: unsafe.Offsetof(s.Flt)},
		testutil.Field{Name: "dbl", Type: doubleT, Offset: unsafe.Offsetof(s.Dbl)},
	)

	var wa cWithArray
	cu.Struct("with_array", unsafe.Sizeof(wa),
		testutil.Field{Name: "len", Type: intT, Offset: unsafe.Offsetof(wa.Len)},
		testutil.Field{Name: "vals", Type: cu.Array(intT, 2), Offset: unsafe.Offsetof(wa.Vals)},
	)

	var wu cWithUnion
	cu.Struct("with_union", unsafe.Sizeof(wu),
		testutil.Field{Name: "tag", Type: intT, Offset: unsafe.Offsetof(wu.Tag)},
		testutil.Field{Name: "val", Type: cu.Union("value", 8,
			testutil.Field{Name: "i", Type: intT},
			testutil.Field{Name: "l", Type: longT},
		), Offset: unsafe.Offsetof(wu.Val)},
	)

	cu.Typedef("anon_t", cu.Struct("", 4, testutil.Field{Name: "v", Type: intT}))
	cu.Struct("empty", 0)

	return b
}

func newFixtureDomain(t *testing.T) *reflection.Domain {
	t.Helper()
	data, err := fixture().Data()
	require.NoError(t, err)

	d, err := reflection.FromDWARF(data, reflection.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func mustType(t *testing.T, d *reflection.Domain, name string) reflection.Type {
	t.Helper()
	typ, err := d.TypeByName(name)
	require.NoError(t, err)
	return typ
}

// cString returns a pointer to a NUL-terminated copy of s.
func cString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}
