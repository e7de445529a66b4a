package reflection

import (
	"debug/dwarf"
	"encoding/binary"
)

const opAddr = 0x03 // DW_OP_addr

// Variable is a handle to a variable or formal parameter.
type Variable struct {
	handle
}

// Name returns the name of the variable.
func (v Variable) Name() (string, error) {
	return v.name("Variable.Name")
}

// Type returns the peeled type of the variable.
func (v Variable) Type() (Type, error) {
	return v.typeOf("Variable.Type")
}

// Address returns the static address of the variable. Only locations made of
// a single DW_OP_addr are supported; locals and optimized-out variables fail
// with ErrNoData.
func (v Variable) Address() (uint64, error) {
	const op = "Variable.Address"
	if err := v.valid(op); err != nil {
		return 0, err
	}
	f, ok := v.d.c.Attr(v.off, dwarf.AttrLocation)
	if !ok {
		return 0, newError(op, ErrNoData)
	}
	expr, ok := f.Val.([]byte)
	if !ok || len(expr) == 0 || expr[0] != opAddr {
		return 0, newError(op, ErrNoData)
	}
	switch len(expr) - 1 {
	case 8:
		return binary.NativeEndian.Uint64(expr[1:]), nil
	case 4:
		return uint64(binary.NativeEndian.Uint32(expr[1:])), nil
	}
	return 0, newError(op, ErrNoData)
}
