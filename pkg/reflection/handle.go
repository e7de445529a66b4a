package reflection

import (
	"debug/dwarf"

	"github.com/VasilisMylonas/libreflect/pkg/debuginfo"
)

// maxPeel bounds qualifier and typedef chains so malformed input cannot loop.
const maxPeel = 64

// handle names one entry of a domain.
type handle struct {
	d   *Domain
	off dwarf.Offset
}

func (h handle) valid(op string) error {
	if h.d == nil {
		return newError(op, ErrNullArgument)
	}
	if h.d.closed.Load() || !h.d.c.Has(h.off) {
		return newError(op, ErrInvalidHandle)
	}
	return nil
}

// Offset returns the offset of the entry in .debug_info.
func (h handle) Offset() dwarf.Offset {
	return h.off
}

// Domain returns the domain the handle belongs to.
func (h handle) Domain() *Domain {
	return h.d
}

// IsZero reports whether the handle was never obtained from a domain.
func (h handle) IsZero() bool {
	return h.d == nil
}

// DeclLocation returns the source position the entry was declared at.
func (h handle) DeclLocation() (debuginfo.Location, error) {
	const op = "DeclLocation"
	if err := h.valid(op); err != nil {
		return debuginfo.Location{}, err
	}
	loc, ok := h.d.c.DeclLocation(h.off)
	if !ok {
		return debuginfo.Location{}, newError(op, ErrNoData)
	}
	return loc, nil
}

func (h handle) tag() dwarf.Tag {
	tag, _ := h.d.c.Tag(h.off)
	return tag
}

func (h handle) name(op string) (string, error) {
	if err := h.valid(op); err != nil {
		return "", err
	}
	name, ok := h.d.c.Name(h.off)
	if !ok {
		return "", newError(op, ErrNoData)
	}
	return name, nil
}

func (h handle) intAttr(attr dwarf.Attr) (int64, bool) {
	f, ok := h.d.c.Attr(h.off, attr)
	if !ok {
		return 0, false
	}
	v, ok := f.Val.(int64)
	return v, ok
}

func (h handle) with(off dwarf.Offset) handle {
	return handle{d: h.d, off: off}
}

// peel strips typedefs and qualifiers starting at off.
func (h handle) peel(off dwarf.Offset) (dwarf.Offset, bool) {
	for i := 0; i < maxPeel; i++ {
		tag, ok := h.d.c.Tag(off)
		if !ok {
			return 0, false
		}
		switch tag {
		case dwarf.TagTypedef, dwarf.TagConstType, dwarf.TagVolatileType, dwarf.TagRestrictType:
		default:
			return off, true
		}
		next, ok := h.d.c.Ref(off, dwarf.AttrType)
		if !ok {
			return 0, false
		}
		off = next
	}
	return 0, false
}

// typeOf resolves the type attribute of the entry and peels it.
func (h handle) typeOf(op string) (Type, error) {
	if err := h.valid(op); err != nil {
		return Type{}, err
	}
	ref, ok := h.d.c.Ref(h.off, dwarf.AttrType)
	if !ok {
		return Type{}, newError(op, ErrNoData)
	}
	off, ok := h.peel(ref)
	if !ok {
		return Type{}, newError(op, ErrNoData)
	}
	return Type{h.with(off)}, nil
}

// childByIndex returns the i-th child tagged tag.
func (h handle) childByIndex(op string, tag dwarf.Tag, i int) (handle, error) {
	if err := h.valid(op); err != nil {
		return handle{}, err
	}
	if i < 0 {
		return handle{}, newError(op, ErrNotFound)
	}
	for _, child := range h.d.c.Children(h.off) {
		if t, _ := h.d.c.Tag(child); t != tag {
			continue
		}
		if i == 0 {
			return h.with(child), nil
		}
		i--
	}
	return handle{}, newError(op, ErrNotFound)
}

// childByName returns the first child tagged tag named name.
func (h handle) childByName(op string, tag dwarf.Tag, name string) (handle, error) {
	if err := h.valid(op); err != nil {
		return handle{}, err
	}
	if name == "" {
		return handle{}, newError(op, ErrNullArgument)
	}
	for _, child := range h.d.c.Children(h.off) {
		if t, _ := h.d.c.Tag(child); t != tag {
			continue
		}
		if n, ok := h.d.c.Name(child); ok && n == name {
			return h.with(child), nil
		}
	}
	return handle{}, newNamedError(op, name, ErrNotFound)
}

func (h handle) countChildren(op string, tag dwarf.Tag) (int, error) {
	if err := h.valid(op); err != nil {
		return 0, err
	}
	n := 0
	for _, child := range h.d.c.Children(h.off) {
		if t, _ := h.d.c.Tag(child); t == tag {
			n++
		}
	}
	return n, nil
}
