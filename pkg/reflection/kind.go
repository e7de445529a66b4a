package reflection

import "debug/dwarf"

// Kind classifies a type entry.
type Kind int

const (
	KindInvalid Kind = iota
	KindBuiltin
	KindPointer
	KindArray
	KindUnion
	KindStruct
	KindEnum
	KindTypedef
	KindSubroutine
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindUnion:
		return "union"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindTypedef:
		return "typedef"
	case KindSubroutine:
		return "subroutine"
	default:
		return "invalid"
	}
}

func kindOf(tag dwarf.Tag) Kind {
	switch tag {
	case dwarf.TagBaseType:
		return KindBuiltin
	case dwarf.TagPointerType:
		return KindPointer
	case dwarf.TagArrayType:
		return KindArray
	case dwarf.TagUnionType:
		return KindUnion
	case dwarf.TagStructType:
		return KindStruct
	case dwarf.TagEnumerationType:
		return KindEnum
	case dwarf.TagTypedef:
		return KindTypedef
	case dwarf.TagSubroutineType:
		return KindSubroutine
	default:
		return KindInvalid
	}
}

// Repr is the leaf encoding family of a builtin type.
type Repr int

const (
	ReprUnknown Repr = iota
	ReprFloat
	ReprImaginary
	ReprComplex
	ReprDecimal
	ReprInt
	ReprUint
	ReprPointer
	ReprBoolean
	ReprUChar
	ReprSChar
	ReprString
)

func (r Repr) String() string {
	switch r {
	case ReprFloat:
		return "float"
	case ReprImaginary:
		return "imaginary"
	case ReprComplex:
		return "complex"
	case ReprDecimal:
		return "decimal"
	case ReprInt:
		return "int"
	case ReprUint:
		return "uint"
	case ReprPointer:
		return "pointer"
	case ReprBoolean:
		return "boolean"
	case ReprUChar:
		return "unsigned char"
	case ReprSChar:
		return "signed char"
	case ReprString:
		return "string"
	default:
		return "unknown"
	}
}

// Base type encodings (DW_ATE_*). debug/dwarf keeps its own copy unexported.
const (
	encAddress        = 0x01
	encBoolean        = 0x02
	encComplexFloat   = 0x03
	encFloat          = 0x04
	encSigned         = 0x05
	encSignedChar     = 0x06
	encUnsigned       = 0x07
	encUnsignedChar   = 0x08
	encImaginaryFloat = 0x09
	encDecimalFloat   = 0x0f
)

func reprOf(encoding int64) Repr {
	switch encoding {
	case encFloat:
		return ReprFloat
	case encImaginaryFloat:
		return ReprImaginary
	case encComplexFloat:
		return ReprComplex
	case encDecimalFloat:
		return ReprDecimal
	case encSigned:
		return ReprInt
	case encUnsigned:
		return ReprUint
	case encAddress:
		return ReprPointer
	case encBoolean:
		return ReprBoolean
	case encUnsignedChar:
		return ReprUChar
	case encSignedChar:
		return ReprSChar
	default:
		return ReprUnknown
	}
}
