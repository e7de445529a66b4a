package serialize

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Format renders the events of a walk in one output syntax. Implementations
// hold no per-call state and may be shared between goroutines.
type Format interface {
	// Leaf writes a scalar value.
	Leaf(w io.Writer, leaf Leaf) error
	// BeginMember is called before a struct member's value.
	BeginMember(w io.Writer, name string) error
	// EndMember is called after a struct member's value. last is true for the
	// final member of the struct.
	EndMember(w io.Writer, name string, last bool) error
	// BeginStruct is called before the members of a struct. Anonymous
	// structs have an empty name.
	BeginStruct(w io.Writer, name string) error
	// EndStruct is called after the members of a struct.
	EndStruct(w io.Writer, name string) error
}

// Funcs adapts a table of functions to Format. Nil entries write nothing.
type Funcs struct {
	LeafFunc        func(w io.Writer, leaf Leaf) error
	BeginMemberFunc func(w io.Writer, name string) error
	EndMemberFunc   func(w io.Writer, name string, last bool) error
	BeginStructFunc func(w io.Writer, name string) error
	EndStructFunc   func(w io.Writer, name string) error
}

func (f Funcs) Leaf(w io.Writer, leaf Leaf) error {
	if f.LeafFunc == nil {
		return nil
	}
	return f.LeafFunc(w, leaf)
}

func (f Funcs) BeginMember(w io.Writer, name string) error {
	if f.BeginMemberFunc == nil {
		return nil
	}
	return f.BeginMemberFunc(w, name)
}

func (f Funcs) EndMember(w io.Writer, name string, last bool) error {
	if f.EndMemberFunc == nil {
		return nil
	}
	return f.EndMemberFunc(w, name, last)
}

func (f Funcs) BeginStruct(w io.Writer, name string) error {
	if f.BeginStructFunc == nil {
		return nil
	}
	return f.BeginStructFunc(w, name)
}

func (f Funcs) EndStruct(w io.Writer, name string) error {
	if f.EndStructFunc == nil {
		return nil
	}
	return f.EndStructFunc(w, name)
}

// Built-in formats.
var (
	// JSON writes {"a":1,"b":2}.
	JSON Format = jsonFormat{}
	// XML writes <a>1</a><b>2</b>. The enclosing root element is left to the
	// caller.
	XML Format = xmlFormat{}
	// C writes a designated initializer, {\n.a = 1,\n.b = 2,\n}.
	C Format = cFormat{}
)

var formats = map[string]Format{
	"json": JSON,
	"xml":  XML,
	"c":    C,
}

// FormatByName returns the built-in format called name (json, xml or c).
func FormatByName(name string) (Format, error) {
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(FormatNames(), ", "))
	}
	return f, nil
}

// FormatNames returns the names accepted by FormatByName, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

// writeLeaf writes every leaf but strings as plain text.
func writeLeaf(w io.Writer, leaf Leaf) error {
	text, err := leaf.Text()
	if err != nil {
		return err
	}
	return writeString(w, text)
}
