package reflection

import "debug/dwarf"

// Member is a handle to a field of a struct or union.
type Member struct {
	handle
}

// Name returns the name of the member.
func (m Member) Name() (string, error) {
	return m.name("Member.Name")
}

// Type returns the peeled type of the member.
func (m Member) Type() (Type, error) {
	return m.typeOf("Member.Type")
}

// Offset returns the byte offset of the member within its aggregate. Only
// constant locations are supported; location expressions and bit fields fail
// with ErrNoData. DWARF 2 and 3 units encode constant offsets with forms that
// debug/dwarf classifies as location list pointers; those are accepted too.
func (m Member) Offset() (int64, error) {
	const op = "Member.Offset"
	if err := m.valid(op); err != nil {
		return 0, err
	}
	f, ok := m.d.c.Attr(m.off, dwarf.AttrDataMemberLoc)
	if !ok || (f.Class != dwarf.ClassConstant && f.Class != dwarf.ClassLocListPtr) {
		return 0, newError(op, ErrNoData)
	}
	off, ok := f.Val.(int64)
	if !ok || off < 0 {
		return 0, newError(op, ErrNoData)
	}
	return off, nil
}
