package serialize

import (
	"io"

	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

type xmlFormat struct{}

var xmlEntities = [256]string{
	'<':  "&#60;",
	'&':  "&#38;",
	'>':  "&#62;",
	'\'': "&#39;",
	'"':  "&#34;",
}

func (xmlFormat) Leaf(w io.Writer, leaf Leaf) error {
	if leaf.Repr != reflection.ReprString {
		return writeLeaf(w, leaf)
	}

	s := leaf.Str
	start := 0
	for i, c := range s {
		ent := xmlEntities[c]
		if ent == "" {
			continue
		}
		if _, err := w.Write(s[start:i]); err != nil {
			return err
		}
		if err := writeString(w, ent); err != nil {
			return err
		}
		start = i + 1
	}
	_, err := w.Write(s[start:])
	return err
}

func (xmlFormat) BeginMember(w io.Writer, name string) error {
	return writeString(w, "<"+name+">")
}

func (xmlFormat) EndMember(w io.Writer, name string, _ bool) error {
	return writeString(w, "</"+name+">")
}

// Struct boundaries produce no output; nested structs appear as the content
// of their member element.
func (xmlFormat) BeginStruct(io.Writer, string) error { return nil }
func (xmlFormat) EndStruct(io.Writer, string) error   { return nil }
