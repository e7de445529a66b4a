package reflection

import "debug/dwarf"

// EntryClass selects which entries a name lookup considers.
type EntryClass int

const (
	// ClassType matches typedefs and type definitions.
	ClassType EntryClass = iota
	// ClassFunction matches subprograms.
	ClassFunction
	// ClassVariable matches variables.
	ClassVariable
)

func (c EntryClass) String() string {
	switch c {
	case ClassType:
		return "type"
	case ClassFunction:
		return "function"
	case ClassVariable:
		return "variable"
	default:
		return "unknown"
	}
}

func (c EntryClass) matches(tag dwarf.Tag) bool {
	switch c {
	case ClassType:
		switch tag {
		case dwarf.TagTypedef,
			dwarf.TagBaseType,
			dwarf.TagArrayType,
			dwarf.TagUnionType,
			dwarf.TagStructType,
			dwarf.TagEnumerationType,
			dwarf.TagSubroutineType,
			dwarf.TagPointerType:
			return true
		}
	case ClassFunction:
		return tag == dwarf.TagSubprogram
	case ClassVariable:
		return tag == dwarf.TagVariable
	}
	return false
}

// locate returns the first entry of class named name, searching each unit's
// immediate children in unit order.
func (d *Domain) locate(op string, class EntryClass, name string) (dwarf.Offset, error) {
	if err := d.check(op); err != nil {
		return 0, err
	}
	if name == "" {
		return 0, newError(op, ErrNullArgument)
	}

	key := lookupKey{class: class, name: name}
	if d.cache != nil {
		if off, ok := d.cache.Get(key); ok {
			return off, nil
		}
	}

	for _, unit := range d.c.Units() {
		for _, child := range d.c.Children(unit) {
			if !d.matches(child, class, name) {
				continue
			}
			if d.cache != nil {
				d.cache.Add(key, child)
			}
			d.logger.Trace().
				Str("class", class.String()).
				Str("name", name).
				Uint32("offset", uint32(child)).
				Msg("Resolved name")
			return child, nil
		}
	}

	return 0, newNamedError(op, name, ErrNotFound)
}

// locateAll returns every entry of class named name, in the order locate
// would consider them.
func (d *Domain) locateAll(op string, class EntryClass, name string) ([]dwarf.Offset, error) {
	if err := d.check(op); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, newError(op, ErrNullArgument)
	}

	var out []dwarf.Offset
	for _, unit := range d.c.Units() {
		for _, child := range d.c.Children(unit) {
			if d.matches(child, class, name) {
				out = append(out, child)
			}
		}
	}
	if len(out) == 0 {
		return nil, newNamedError(op, name, ErrNotFound)
	}
	return out, nil
}

func (d *Domain) matches(off dwarf.Offset, class EntryClass, name string) bool {
	tag, ok := d.c.Tag(off)
	if !ok || !class.matches(tag) {
		return false
	}
	n, ok := d.c.Name(off)
	return ok && n == name
}

// TypeByName returns the first type or typedef named name.
func (d *Domain) TypeByName(name string) (Type, error) {
	off, err := d.locate("TypeByName", ClassType, name)
	if err != nil {
		return Type{}, err
	}
	return Type{handle{d: d, off: off}}, nil
}

// FunctionByName returns the first function named name.
func (d *Domain) FunctionByName(name string) (Function, error) {
	off, err := d.locate("FunctionByName", ClassFunction, name)
	if err != nil {
		return Function{}, err
	}
	return Function{handle{d: d, off: off}}, nil
}

// VariableByName returns the first variable named name.
func (d *Domain) VariableByName(name string) (Variable, error) {
	off, err := d.locate("VariableByName", ClassVariable, name)
	if err != nil {
		return Variable{}, err
	}
	return Variable{handle{d: d, off: off}}, nil
}

// TypesByName returns every type or typedef named name, one per unit that
// defines it.
func (d *Domain) TypesByName(name string) ([]Type, error) {
	offs, err := d.locateAll("TypesByName", ClassType, name)
	if err != nil {
		return nil, err
	}
	out := make([]Type, len(offs))
	for i, off := range offs {
		out[i] = Type{handle{d: d, off: off}}
	}
	return out, nil
}

// FunctionsByName returns every function named name.
func (d *Domain) FunctionsByName(name string) ([]Function, error) {
	offs, err := d.locateAll("FunctionsByName", ClassFunction, name)
	if err != nil {
		return nil, err
	}
	out := make([]Function, len(offs))
	for i, off := range offs {
		out[i] = Function{handle{d: d, off: off}}
	}
	return out, nil
}

// VariablesByName returns every variable named name.
func (d *Domain) VariablesByName(name string) ([]Variable, error) {
	offs, err := d.locateAll("VariablesByName", ClassVariable, name)
	if err != nil {
		return nil, err
	}
	out := make([]Variable, len(offs))
	for i, off := range offs {
		out[i] = Variable{handle{d: d, off: off}}
	}
	return out, nil
}
