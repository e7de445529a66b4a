package reflection

import "debug/dwarf"

// Function is a handle to a subprogram entry.
type Function struct {
	handle
}

// Name returns the name of the function.
func (f Function) Name() (string, error) {
	return f.name("Function.Name")
}

// ReturnType returns the peeled return type. Void functions fail with
// ErrNoData.
func (f Function) ReturnType() (Type, error) {
	return f.typeOf("Function.ReturnType")
}

// IsExtern reports whether the function has external linkage. Entries
// without the external attribute fail with ErrNoData.
func (f Function) IsExtern() (bool, error) {
	const op = "Function.IsExtern"
	if err := f.valid(op); err != nil {
		return false, err
	}
	fl, ok := f.d.c.Attr(f.off, dwarf.AttrExternal)
	if !ok {
		return false, newError(op, ErrNoData)
	}
	v, ok := fl.Val.(bool)
	if !ok {
		return false, newError(op, ErrNoData)
	}
	return v, nil
}

// ParamByIndex returns the i-th formal parameter.
func (f Function) ParamByIndex(i int) (Variable, error) {
	h, err := f.childByIndex("Function.ParamByIndex", dwarf.TagFormalParameter, i)
	if err != nil {
		return Variable{}, err
	}
	return Variable{h}, nil
}

// ParamByName returns the formal parameter named name.
func (f Function) ParamByName(name string) (Variable, error) {
	h, err := f.childByName("Function.ParamByName", dwarf.TagFormalParameter, name)
	if err != nil {
		return Variable{}, err
	}
	return Variable{h}, nil
}

// NumParams returns the number of formal parameters.
func (f Function) NumParams() (int, error) {
	return f.countChildren("Function.NumParams", dwarf.TagFormalParameter)
}

// VarByIndex returns the i-th local variable declared directly in the
// function body.
func (f Function) VarByIndex(i int) (Variable, error) {
	h, err := f.childByIndex("Function.VarByIndex", dwarf.TagVariable, i)
	if err != nil {
		return Variable{}, err
	}
	return Variable{h}, nil
}

// VarByName returns the local variable named name.
func (f Function) VarByName(name string) (Variable, error) {
	h, err := f.childByName("Function.VarByName", dwarf.TagVariable, name)
	if err != nil {
		return Variable{}, err
	}
	return Variable{h}, nil
}

// NumVars returns the number of local variables declared directly in the
// function body.
func (f Function) NumVars() (int, error) {
	return f.countChildren("Function.NumVars", dwarf.TagVariable)
}
