package testutil

import (
	"bytes"
	"debug/dwarf"
	"encoding/binary"
	"unsafe"
)

// PtrSize is the size of a pointer on the host, used as the address size of
// built units.
const PtrSize = int(unsafe.Sizeof(uintptr(0)))

// Base type encodings (DW_ATE_*).
const (
	EncAddress        = 0x01
	EncBoolean        = 0x02
	EncComplexFloat   = 0x03
	EncFloat          = 0x04
	EncSigned         = 0x05
	EncSignedChar     = 0x06
	EncUnsigned       = 0x07
	EncUnsignedChar   = 0x08
	EncImaginaryFloat = 0x09
	EncDecimalFloat   = 0x0f
	EncUTF            = 0x10
)

// Attribute forms written by the builder.
const (
	formBlock1       = 0x0a
	formData1        = 0x0b
	formFlag         = 0x0c
	formSdata        = 0x0d
	formString       = 0x08
	formUdata        = 0x0f
	formRefAddr      = 0x10
	formExprloc      = 0x18
	formFlagPresent  = 0x19
	dwarfVersion     = 4
	opAddr           = 0x03
	langC99          = 0x0c
)

// Attr is one attribute of a DIE.
type Attr struct {
	attr  dwarf.Attr
	form  int
	value any
}

// Name is a DW_AT_name string attribute.
func Name(name string) Attr { return Attr{attr: dwarf.AttrName, form: formString, value: name} }

// Udata is an unsigned LEB128 constant attribute.
func Udata(attr dwarf.Attr, v uint64) Attr { return Attr{attr: attr, form: formUdata, value: v} }

// Data1 is a one-byte constant attribute.
func Data1(attr dwarf.Attr, v uint8) Attr { return Attr{attr: attr, form: formData1, value: v} }

// Sdata is a signed LEB128 constant attribute.
func Sdata(attr dwarf.Attr, v int64) Attr { return Attr{attr: attr, form: formSdata, value: v} }

// Ref is a reference to another DIE, possibly in another unit.
func Ref(attr dwarf.Attr, target *DIE) Attr { return Attr{attr: attr, form: formRefAddr, value: target} }

// Flag is a boolean attribute.
func Flag(attr dwarf.Attr, v bool) Attr {
	if v {
		return Attr{attr: attr, form: formFlagPresent, value: true}
	}
	return Attr{attr: attr, form: formFlag, value: false}
}

// Exprloc is a DWARF expression attribute.
func Exprloc(attr dwarf.Attr, expr []byte) Attr {
	return Attr{attr: attr, form: formExprloc, value: expr}
}

// Block1 is a one-byte-length block attribute.
func Block1(attr dwarf.Attr, data []byte) Attr {
	return Attr{attr: attr, form: formBlock1, value: data}
}

// AddrExpr returns a DW_OP_addr expression for addr.
func AddrExpr(addr uint64) []byte {
	expr := make([]byte, 1+PtrSize)
	expr[0] = opAddr
	if PtrSize == 8 {
		binary.LittleEndian.PutUint64(expr[1:], addr)
	} else {
		binary.LittleEndian.PutUint32(expr[1:], uint32(addr))
	}
	return expr
}

// DIE is a debugging information entry under construction.
type DIE struct {
	Tag      dwarf.Tag
	Attrs    []Attr
	Children []*DIE

	offset uint32
	code   uint64
}

// Offset returns the offset of the entry in .debug_info. It is only valid
// after the builder has encoded its sections.
func (d *DIE) Offset() dwarf.Offset {
	return dwarf.Offset(d.offset)
}

// Add appends a child entry.
func (d *DIE) Add(tag dwarf.Tag, attrs ...Attr) *DIE {
	child := &DIE{Tag: tag, Attrs: attrs}
	d.Children = append(d.Children, child)
	return child
}

// BaseType adds a DW_TAG_base_type.
func (d *DIE) BaseType(name string, size int, encoding uint64) *DIE {
	return d.Add(dwarf.TagBaseType,
		Name(name),
		Udata(dwarf.AttrByteSize, uint64(size)),
		Udata(dwarf.AttrEncoding, encoding))
}

// Pointer adds a pointer to target. A nil target is a void pointer.
func (d *DIE) Pointer(target *DIE) *DIE {
	attrs := []Attr{Udata(dwarf.AttrByteSize, uint64(PtrSize))}
	if target != nil {
		attrs = append(attrs, Ref(dwarf.AttrType, target))
	}
	return d.Add(dwarf.TagPointerType, attrs...)
}

// Const adds a const qualifier over target.
func (d *DIE) Const(target *DIE) *DIE {
	return d.Add(dwarf.TagConstType, Ref(dwarf.AttrType, target))
}

// Volatile adds a volatile qualifier over target.
func (d *DIE) Volatile(target *DIE) *DIE {
	return d.Add(dwarf.TagVolatileType, Ref(dwarf.AttrType, target))
}

// Typedef adds a typedef naming target.
func (d *DIE) Typedef(name string, target *DIE) *DIE {
	return d.Add(dwarf.TagTypedef, Name(name), Ref(dwarf.AttrType, target))
}

// Field describes one member of a struct or union.
type Field struct {
	Name   string
	Type   *DIE
	Offset uintptr
}

func (d *DIE) aggregate(tag dwarf.Tag, name string, size uintptr, fields []Field) *DIE {
	var attrs []Attr
	if name != "" {
		attrs = append(attrs, Name(name))
	}
	attrs = append(attrs, Udata(dwarf.AttrByteSize, uint64(size)))
	agg := d.Add(tag, attrs...)
	for _, f := range fields {
		agg.Add(dwarf.TagMember,
			Name(f.Name),
			Ref(dwarf.AttrType, f.Type),
			Data1(dwarf.AttrDataMemberLoc, uint8(f.Offset)))
	}
	return agg
}

// Struct adds a structure type with the given members. An empty name makes
// an anonymous struct.
func (d *DIE) Struct(name string, size uintptr, fields ...Field) *DIE {
	return d.aggregate(dwarf.TagStructType, name, size, fields)
}

// Union adds a union type with the given members.
func (d *DIE) Union(name string, size uintptr, fields ...Field) *DIE {
	return d.aggregate(dwarf.TagUnionType, name, size, fields)
}

// Enum adds an enumeration type.
func (d *DIE) Enum(name string, size int) *DIE {
	return d.Add(dwarf.TagEnumerationType, Name(name), Udata(dwarf.AttrByteSize, uint64(size)))
}

// Array adds an array of count elements of elem.
func (d *DIE) Array(elem *DIE, count int) *DIE {
	arr := d.Add(dwarf.TagArrayType, Ref(dwarf.AttrType, elem))
	arr.Add(dwarf.TagSubrangeType, Udata(dwarf.AttrCount, uint64(count)))
	return arr
}

// Subprogram adds a function. A nil ret makes a void function.
func (d *DIE) Subprogram(name string, ret *DIE, external bool) *DIE {
	attrs := []Attr{Name(name), Flag(dwarf.AttrExternal, external)}
	if ret != nil {
		attrs = append(attrs, Ref(dwarf.AttrType, ret))
	}
	return d.Add(dwarf.TagSubprogram, attrs...)
}

// Param adds a formal parameter.
func (d *DIE) Param(name string, typ *DIE) *DIE {
	return d.Add(dwarf.TagFormalParameter, Name(name), Ref(dwarf.AttrType, typ))
}

// Variable adds a variable. A zero addr leaves the location out.
func (d *DIE) Variable(name string, typ *DIE, addr uint64) *DIE {
	attrs := []Attr{Name(name), Ref(dwarf.AttrType, typ)}
	if addr != 0 {
		attrs = append(attrs, Exprloc(dwarf.AttrLocation, AddrExpr(addr)))
	}
	return d.Add(dwarf.TagVariable, attrs...)
}

// DWARFBuilder assembles .debug_abbrev and .debug_info sections from a tree
// of DIEs, one abbreviation per DIE.
type DWARFBuilder struct {
	units []*DIE
}

// NewDWARFBuilder returns an empty builder.
func NewDWARFBuilder() *DWARFBuilder {
	return &DWARFBuilder{}
}

// Unit starts a new compile unit.
func (b *DWARFBuilder) Unit(name string) *DIE {
	cu := &DIE{
		Tag:   dwarf.TagCompileUnit,
		Attrs: []Attr{Name(name), Udata(dwarf.AttrLanguage, langC99)},
	}
	b.units = append(b.units, cu)
	return cu
}

type fixup struct {
	pos    int
	target *DIE
}

// Sections encodes the DWARF sections.
func (b *DWARFBuilder) Sections() (abbrev, info []byte) {
	var (
		ab     bytes.Buffer
		in     bytes.Buffer
		fixups []fixup
		code   uint64
	)

	var emit func(d *DIE)
	emit = func(d *DIE) {
		code++
		d.code = code
		d.offset = uint32(in.Len())

		putULEB(&ab, d.code)
		putULEB(&ab, uint64(d.Tag))
		if len(d.Children) > 0 {
			ab.WriteByte(1)
		} else {
			ab.WriteByte(0)
		}
		for _, a := range d.Attrs {
			putULEB(&ab, uint64(a.attr))
			putULEB(&ab, uint64(a.form))
		}
		ab.Write([]byte{0, 0})

		putULEB(&in, d.code)
		for _, a := range d.Attrs {
			switch a.form {
			case formString:
				in.WriteString(a.value.(string))
				in.WriteByte(0)
			case formUdata:
				putULEB(&in, a.value.(uint64))
			case formSdata:
				putSLEB(&in, a.value.(int64))
			case formData1:
				in.WriteByte(a.value.(uint8))
			case formRefAddr:
				fixups = append(fixups, fixup{pos: in.Len(), target: a.value.(*DIE)})
				in.Write([]byte{0, 0, 0, 0})
			case formFlag:
				in.WriteByte(0)
			case formFlagPresent:
			case formExprloc:
				expr := a.value.([]byte)
				putULEB(&in, uint64(len(expr)))
				in.Write(expr)
			case formBlock1:
				data := a.value.([]byte)
				in.WriteByte(uint8(len(data)))
				in.Write(data)
			}
		}

		if len(d.Children) > 0 {
			for _, c := range d.Children {
				emit(c)
			}
			in.WriteByte(0)
		}
	}

	for _, cu := range b.units {
		start := in.Len()
		// unit_length, patched below
		in.Write([]byte{0, 0, 0, 0})
		_ = binary.Write(&in, binary.LittleEndian, uint16(dwarfVersion))
		_ = binary.Write(&in, binary.LittleEndian, uint32(0)) // shared abbrev table
		in.WriteByte(uint8(PtrSize))
		emit(cu)
		binary.LittleEndian.PutUint32(in.Bytes()[start:], uint32(in.Len()-start-4))
	}
	ab.WriteByte(0)

	info = in.Bytes()
	for _, f := range fixups {
		binary.LittleEndian.PutUint32(info[f.pos:], f.target.offset)
	}
	return ab.Bytes(), info
}

// Data encodes the sections and parses them with debug/dwarf.
func (b *DWARFBuilder) Data() (*dwarf.Data, error) {
	abbrev, info := b.Sections()
	return dwarf.New(abbrev, nil, nil, info, nil, nil, nil, nil)
}

func putULEB(buf *bytes.Buffer, v uint64) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		buf.WriteByte(c)
		if v == 0 {
			return
		}
	}
}

func putSLEB(buf *bytes.Buffer, v int64) {
	for {
		c := byte(v & 0x7f)
		s := byte(v & 0x40)
		v >>= 7
		if (v != -1 || s == 0) && (v != 0 || s != 0) {
			c |= 0x80
		}
		buf.WriteByte(c)
		if c&0x80 == 0 {
			return
		}
	}
}
