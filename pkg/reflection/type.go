package reflection

import "debug/dwarf"

const (
	cStringName = "const char*"
	pointerName = "void*"
)

// Type is a handle to a type entry. Types handed out by resolvers are peeled:
// they never name a typedef or a qualifier, unless obtained directly by name.
type Type struct {
	handle
}

// Kind returns the classification of the type.
func (t Type) Kind() (Kind, error) {
	if err := t.valid("Type.Kind"); err != nil {
		return KindInvalid, err
	}
	return kindOf(t.tag()), nil
}

func (t Type) is(k Kind) bool {
	got, err := t.Kind()
	return err == nil && got == k
}

func (t Type) IsBuiltin() bool    { return t.is(KindBuiltin) }
func (t Type) IsPointer() bool    { return t.is(KindPointer) }
func (t Type) IsArray() bool      { return t.is(KindArray) }
func (t Type) IsUnion() bool      { return t.is(KindUnion) }
func (t Type) IsStruct() bool     { return t.is(KindStruct) }
func (t Type) IsEnum() bool       { return t.is(KindEnum) }
func (t Type) IsTypedef() bool    { return t.is(KindTypedef) }
func (t Type) IsSubroutine() bool { return t.is(KindSubroutine) }

// IsCString reports whether the type is a pointer to const char.
func (t Type) IsCString() bool {
	if !t.IsPointer() {
		return false
	}
	c := t.d.c
	pointee, ok := c.Ref(t.off, dwarf.AttrType)
	if !ok {
		return false
	}
	if tag, _ := c.Tag(pointee); tag != dwarf.TagConstType {
		return false
	}
	base, ok := c.Ref(pointee, dwarf.AttrType)
	if !ok {
		return false
	}
	if tag, _ := c.Tag(base); tag != dwarf.TagBaseType {
		return false
	}
	name, ok := c.Name(base)
	return ok && name == "char"
}

// Size returns the size of the type in bytes.
func (t Type) Size() (int64, error) {
	const op = "Type.Size"
	if err := t.valid(op); err != nil {
		return 0, err
	}
	size, ok := t.intAttr(dwarf.AttrByteSize)
	if !ok || size <= 0 {
		return 0, newError(op, ErrNoData)
	}
	return size, nil
}

// Name returns the name of the type. C strings are named "const char*" and
// other pointers "void*". Anonymous types fail with ErrNoData.
func (t Type) Name() (string, error) {
	const op = "Type.Name"
	if err := t.valid(op); err != nil {
		return "", err
	}
	if t.IsCString() {
		return cStringName, nil
	}
	if t.IsPointer() {
		return pointerName, nil
	}
	return t.name(op)
}

// Repr returns the leaf encoding of a builtin type. C strings report
// ReprString.
func (t Type) Repr() (Repr, error) {
	const op = "Type.Repr"
	if err := t.valid(op); err != nil {
		return ReprUnknown, err
	}
	if t.IsCString() {
		return ReprString, nil
	}
	enc, ok := t.intAttr(dwarf.AttrEncoding)
	if !ok {
		return ReprUnknown, newError(op, ErrNoData)
	}
	return reprOf(enc), nil
}

// Peel strips typedefs and const, volatile and restrict qualifiers.
func (t Type) Peel() (Type, error) {
	const op = "Type.Peel"
	if err := t.valid(op); err != nil {
		return Type{}, err
	}
	off, ok := t.peel(t.off)
	if !ok {
		return Type{}, newError(op, ErrNoData)
	}
	return Type{t.with(off)}, nil
}

// TypedefType returns the peeled type a typedef names.
func (t Type) TypedefType() (Type, error) {
	const op = "Type.TypedefType"
	if err := t.valid(op); err != nil {
		return Type{}, err
	}
	if t.tag() != dwarf.TagTypedef {
		return Type{}, newError(op, ErrNoData)
	}
	return t.typeOf(op)
}

// Elem returns the peeled pointee of a pointer or the element type of an
// array. Void pointers fail with ErrNoData.
func (t Type) Elem() (Type, error) {
	const op = "Type.Elem"
	if err := t.valid(op); err != nil {
		return Type{}, err
	}
	switch t.tag() {
	case dwarf.TagPointerType, dwarf.TagArrayType:
		return t.typeOf(op)
	}
	return Type{}, newError(op, ErrNoData)
}

func (t Type) aggregate(op string) error {
	if err := t.valid(op); err != nil {
		return err
	}
	switch t.tag() {
	case dwarf.TagStructType, dwarf.TagUnionType:
		return nil
	}
	return newError(op, ErrNoData)
}

// MemberByIndex returns the i-th member of a struct or union.
func (t Type) MemberByIndex(i int) (Member, error) {
	const op = "Type.MemberByIndex"
	if err := t.aggregate(op); err != nil {
		return Member{}, err
	}
	h, err := t.childByIndex(op, dwarf.TagMember, i)
	if err != nil {
		return Member{}, err
	}
	return Member{h}, nil
}

// MemberByName returns the member of a struct or union named name.
func (t Type) MemberByName(name string) (Member, error) {
	const op = "Type.MemberByName"
	if err := t.aggregate(op); err != nil {
		return Member{}, err
	}
	h, err := t.childByName(op, dwarf.TagMember, name)
	if err != nil {
		return Member{}, err
	}
	return Member{h}, nil
}

// NumMembers returns the number of members of a struct or union.
func (t Type) NumMembers() (int, error) {
	const op = "Type.NumMembers"
	if err := t.aggregate(op); err != nil {
		return 0, err
	}
	return t.countChildren(op, dwarf.TagMember)
}

// Members returns the members of a struct or union in declaration order.
func (t Type) Members() ([]Member, error) {
	const op = "Type.Members"
	if err := t.aggregate(op); err != nil {
		return nil, err
	}
	var out []Member
	for _, child := range t.d.c.Children(t.off) {
		if tag, _ := t.d.c.Tag(child); tag == dwarf.TagMember {
			out = append(out, Member{t.with(child)})
		}
	}
	return out, nil
}

// Equal reports whether t and u name the same entry of the same domain.
func (t Type) Equal(u Type) bool {
	return t.d == u.d && t.off == u.off
}
