package helpers

import (
	"errors"
	"fmt"

	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

const maxDescribeDepth = 16

// Describe renders a type the way it would be spelled in a C declaration,
// e.g. "struct person", "int*" or "char[]". Anonymous aggregates print as
// "struct <anonymous>".
func Describe(t reflection.Type) string {
	return describe(t, 0)
}

func describe(t reflection.Type, depth int) string {
	if depth > maxDescribeDepth {
		return "..."
	}
	if t.IsCString() {
		return "const char*"
	}

	k, err := t.Kind()
	if err != nil {
		return "?"
	}

	switch k {
	case reflection.KindPointer:
		elem, err := t.Elem()
		if err != nil {
			return "void*"
		}
		return describe(elem, depth+1) + "*"
	case reflection.KindArray:
		elem, err := t.Elem()
		if err != nil {
			return "?[]"
		}
		return describe(elem, depth+1) + "[]"
	case reflection.KindStruct, reflection.KindUnion, reflection.KindEnum:
		name, err := t.Name()
		if err != nil {
			name = "<anonymous>"
		}
		return k.String() + " " + name
	case reflection.KindSubroutine:
		return "function"
	}

	if name, err := t.Name(); err == nil {
		return name
	}
	if peeled, err := t.Peel(); err == nil && !peeled.Equal(t) {
		return describe(peeled, depth+1)
	}
	return "?"
}

// MemberNode is a struct or union member rendered by RenderTree. Members of
// nested aggregates are expanded; pointers are not followed.
type MemberNode struct {
	Name     string
	Type     string
	Offset   int64
	Size     int64
	children []TreeNode
}

// Label implements TreeNode.
func (n *MemberNode) Label() string {
	if n.Name == "" {
		return n.Type
	}
	if n.Size > 0 {
		return fmt.Sprintf("%s: %s (offset %d, size %d)", n.Name, n.Type, n.Offset, n.Size)
	}
	return fmt.Sprintf("%s: %s (offset %d)", n.Name, n.Type, n.Offset)
}

// Children implements TreeNode.
func (n *MemberNode) Children() []TreeNode {
	return n.children
}

// TypeTree builds the member tree of t. Offsets of nested members are
// relative to the start of t.
func TypeTree(t reflection.Type) (*MemberNode, error) {
	root := &MemberNode{Type: Describe(t)}
	if err := expand(root, t, 0, 0); err != nil {
		return nil, err
	}
	return root, nil
}

func expand(node *MemberNode, t reflection.Type, base int64, depth int) error {
	if depth > maxDescribeDepth || !(t.IsStruct() || t.IsUnion()) {
		return nil
	}

	members, err := t.Members()
	if err != nil {
		return err
	}
	for _, m := range members {
		name, err := m.Name()
		if err != nil {
			return err
		}
		offset, err := m.Offset()
		if errors.Is(err, reflection.ErrNoData) && t.IsUnion() {
			offset, err = 0, nil
		}
		if err != nil {
			return fmt.Errorf("member %s: %w", name, err)
		}
		typ, err := m.Type()
		if err != nil {
			return fmt.Errorf("member %s: %w", name, err)
		}
		size, _ := typ.Size()

		child := &MemberNode{Name: name, Type: Describe(typ), Offset: base + offset, Size: size}
		if err := expand(child, typ, base+offset, depth+1); err != nil {
			return err
		}
		node.children = append(node.children, child)
	}
	return nil
}
